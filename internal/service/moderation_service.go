package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/CaioWing/paddock/internal/domain"
	"github.com/CaioWing/paddock/internal/metrics"
)

// ModerationService applies status changes and field edits. Each mutation
// and its audit entry commit together or not at all.
type ModerationService struct {
	uow domain.UnitOfWorkFactory
	log *slog.Logger
}

func NewModerationService(uow domain.UnitOfWorkFactory, log *slog.Logger) *ModerationService {
	return &ModerationService{uow: uow, log: log}
}

// SetStatus overwrites the listing status. Transitions are permissive:
// re-applying the current status is allowed and still audited. PENDING is
// not a valid target.
func (s *ModerationService) SetStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, callerID string) (*domain.Listing, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}

	var action domain.AuditAction
	switch status {
	case domain.ListingStatusApproved:
		action = domain.AuditActionApproved
	case domain.ListingStatusRejected:
		action = domain.AuditActionRejected
	default:
		return nil, domain.NewFieldError("status", MsgInvalidStatus)
	}

	listing, err := s.apply(ctx, id, action, callerID, func(ctx context.Context, repo domain.ListingRepository) (*domain.Listing, error) {
		return repo.UpdateStatus(ctx, id, status)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("listing status updated", "id", id, "status", status, "caller", callerID)
	return listing, nil
}

// EditFields validates in and overwrites the listing's non-status fields.
func (s *ModerationService) EditFields(ctx context.Context, id uuid.UUID, in EditListingInput, callerID string) (*domain.Listing, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}

	fields, err := ValidateListingEdit(in)
	if err != nil {
		return nil, err
	}

	listing, err := s.apply(ctx, id, domain.AuditActionEdited, callerID, func(ctx context.Context, repo domain.ListingRepository) (*domain.Listing, error) {
		return repo.UpdateFields(ctx, id, fields)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("listing edited", "id", id, "caller", callerID)
	return listing, nil
}

func (s *ModerationService) apply(
	ctx context.Context,
	id uuid.UUID,
	action domain.AuditAction,
	callerID string,
	mutate func(context.Context, domain.ListingRepository) (*domain.Listing, error),
) (*domain.Listing, error) {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := uow.Rollback(ctx); err != nil {
			s.log.Warn("rollback failed", "listing", id, "err", err)
		}
	}()

	listing, err := mutate(ctx, uow.Listings())
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	entry := &domain.AuditEntry{
		Action:    action,
		CallerID:  callerID,
		ListingID: id,
	}
	if err := uow.Audit().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.ModerationActions.WithLabelValues(string(action)).Inc()
	return listing, nil
}
