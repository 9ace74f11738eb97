package service

import (
	"context"
	"log/slog"

	"github.com/CaioWing/paddock/internal/domain"
)

type AuditService struct {
	repo     domain.AuditRepository
	identity *IdentityService
	log      *slog.Logger
}

func NewAuditService(repo domain.AuditRepository, identity *IdentityService, log *slog.Logger) *AuditService {
	return &AuditService{repo: repo, identity: identity, log: log}
}

// List returns entries newest first with listing titles and caller emails
// filled in. Emails are resolved in one batch per call.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditView, int, error) {
	if filter.Action != nil && !filter.Action.Valid() {
		return nil, 0, domain.NewFieldError("action", "Invalid action")
	}
	if filter.PerPage < 0 {
		return nil, 0, domain.NewFieldError("per_page", "page size must not be negative")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.CallerID)
	}

	emails, err := s.identity.ResolveEmails(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range entries {
		e.CallerEmail = emails[e.CallerID]
	}

	return entries, total, nil
}
