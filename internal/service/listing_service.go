package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/CaioWing/paddock/internal/domain"
)

type ListingService struct {
	repo domain.ListingRepository
	log  *slog.Logger
}

func NewListingService(repo domain.ListingRepository, log *slog.Logger) *ListingService {
	return &ListingService{repo: repo, log: log}
}

type ListingPage struct {
	Items   []*domain.Listing
	Total   int
	Page    int
	PerPage int
}

func (p ListingPage) TotalPages() int {
	if p.PerPage < 1 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (s *ListingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPage returns one page ordered newest first. A page past the end is
// empty but still reports the total.
func (s *ListingService) ListPage(ctx context.Context, filter domain.ListingFilter) (*ListingPage, error) {
	if filter.Page < 1 {
		return nil, domain.NewFieldError("page", "page must be at least 1")
	}
	if filter.PerPage < 1 {
		return nil, domain.NewFieldError("per_page", "page size must be at least 1")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.NewFieldError("status", MsgInvalidStatus)
	}

	page := &ListingPage{Page: filter.Page, PerPage: filter.PerPage}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.repo.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("list page: %w", err)
		}
		page.Items = items
		return nil
	})
	g.Go(func() error {
		total, err := s.repo.Count(gctx, filter)
		if err != nil {
			return fmt.Errorf("count listings: %w", err)
		}
		page.Total = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return page, nil
}

func (s *ListingService) CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}
