package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CaioWing/paddock/internal/domain"
)

type UnitOfWorkFactory struct {
	pool *pgxpool.Pool
}

func NewUnitOfWorkFactory(pool *pgxpool.Pool) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{pool: pool}
}

var _ domain.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)

func (f *UnitOfWorkFactory) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	tx, err := f.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &unitOfWork{
		tx:       tx,
		listings: NewListingRepo(tx),
		audit:    NewAuditRepo(tx),
	}, nil
}

type unitOfWork struct {
	tx       pgx.Tx
	listings *ListingRepo
	audit    *AuditRepo
}

func (u *unitOfWork) Listings() domain.ListingRepository { return u.listings }
func (u *unitOfWork) Audit() domain.AuditRepository     { return u.audit }

func (u *unitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}
