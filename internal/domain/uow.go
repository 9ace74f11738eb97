package domain

import "context"

// UnitOfWork groups the listing write and its audit insert in one database
// transaction. Callers defer Rollback; it is a no-op after Commit.
//
//	uow, err := factory.Begin(ctx)
//	if err != nil { ... }
//	defer uow.Rollback(ctx)
//	listing, err := uow.Listings().UpdateStatus(ctx, id, status)
//	...
//	err = uow.Audit().Create(ctx, entry)
//	...
//	return uow.Commit(ctx)
type UnitOfWork interface {
	Listings() ListingRepository
	Audit() AuditRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
