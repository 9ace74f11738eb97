package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CaioWing/paddock/internal/auth"
	"github.com/CaioWing/paddock/internal/domain"
	"github.com/CaioWing/paddock/internal/metrics"
)

// IdentityService is the local identity provider: it checks credentials and
// resolves caller ids to emails for display.
type IdentityService struct {
	users domain.UserRepository
	cache domain.EmailCache // optional
	log   *slog.Logger
}

func NewIdentityService(users domain.UserRepository, cache domain.EmailCache, log *slog.Logger) *IdentityService {
	return &IdentityService{users: users, cache: cache, log: log}
}

func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (domain.Caller, error) {
	if email == "" || password == "" {
		return domain.Caller{}, domain.ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Caller{}, domain.ErrUnauthorized
		}
		return domain.Caller{}, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return domain.Caller{}, domain.ErrUnauthorized
	}

	return domain.Caller{ID: user.ID, Email: user.Email}, nil
}

func (s *IdentityService) CreateUser(ctx context.Context, id, email, password string) (*domain.User, error) {
	if id == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: id, email and password are required", domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{ID: id, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveEmails looks up each distinct id once. Ids that no longer resolve
// are absent from the result. Cache failures degrade to a repository lookup.
func (s *IdentityService) ResolveEmails(ctx context.Context, ids []string) (map[string]string, error) {
	distinct := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	emails := make(map[string]string, len(distinct))
	if len(distinct) == 0 {
		return emails, nil
	}

	missing := distinct
	if s.cache != nil {
		cached, err := s.cache.GetEmails(ctx, distinct)
		if err != nil {
			s.log.Warn("email cache read failed", "err", err)
			cached = nil
		}
		missing = missing[:0:0]
		for _, id := range distinct {
			if email, ok := cached[id]; ok {
				emails[id] = email
				continue
			}
			missing = append(missing, id)
		}
		metrics.EmailCacheLookups.WithLabelValues("hit").Add(float64(len(emails)))
		metrics.EmailCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))
	}

	if len(missing) == 0 {
		return emails, nil
	}

	found, err := s.users.EmailsByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("resolve emails: %w", err)
	}
	for id, email := range found {
		emails[id] = email
	}

	if s.cache != nil && len(found) > 0 {
		if err := s.cache.SetEmails(ctx, found); err != nil {
			s.log.Warn("email cache write failed", "err", err)
		}
	}

	return emails, nil
}
