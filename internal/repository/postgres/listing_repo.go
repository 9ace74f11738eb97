package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CaioWing/paddock/internal/domain"
)

const listingColumns = `id, title, description, model, body_type, price_per_day,
	fuel_type, gearbox, doors, seats, features, status, created_at, updated_at`

type ListingRepo struct {
	db DBTX
}

func NewListingRepo(db DBTX) *ListingRepo {
	return &ListingRepo{db: db}
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Model, &l.BodyType, &l.PricePerDay,
		&l.FuelType, &l.Gearbox, &l.Doors, &l.Seats, &l.Features, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.Features == nil {
		l.Features = []string{}
	}
	return l, nil
}

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	if l.Status == "" {
		l.Status = domain.ListingStatusPending
	}
	if l.Features == nil {
		l.Features = []string{}
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO listings (
			title, description, model, body_type, price_per_day,
			fuel_type, gearbox, doors, seats, features, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at
	`,
		l.Title, l.Description, l.Model, l.BodyType, l.PricePerDay,
		l.FuelType, l.Gearbox, l.Doors, l.Seats, l.Features, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, err := scanListing(r.db.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func listingWhere(f domain.ListingFilter) (string, []any) {
	where := "WHERE 1=1"
	args := []any{}
	if f.Status != nil {
		args = append(args, *f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	return where, args
}

func (r *ListingRepo) List(ctx context.Context, f domain.ListingFilter) ([]*domain.Listing, error) {
	where, args := listingWhere(f)
	limit, offset := pageBounds(f.Page, f.PerPage)

	query := fmt.Sprintf(`
		SELECT %s
		FROM listings %s
		ORDER BY created_at DESC, seq DESC
		LIMIT $%d OFFSET $%d
	`, listingColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	listings := []*domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, nil
}

func (r *ListingRepo) Count(ctx context.Context, f domain.ListingFilter) (int, error) {
	where, args := listingWhere(f)
	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM listings "+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return total, nil
}

func (r *ListingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) (*domain.Listing, error) {
	l, err := scanListing(r.db.QueryRow(ctx, `
		UPDATE listings SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+listingColumns,
		status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update listing status: %w", err)
	}
	return l, nil
}

func (r *ListingRepo) UpdateFields(ctx context.Context, id uuid.UUID, f domain.ListingFields) (*domain.Listing, error) {
	features := f.Features
	if features == nil {
		features = []string{}
	}

	l, err := scanListing(r.db.QueryRow(ctx, `
		UPDATE listings SET
			title = $1,
			description = $2,
			model = $3,
			body_type = $4,
			price_per_day = $5,
			fuel_type = COALESCE($6, fuel_type),
			gearbox = COALESCE($7, gearbox),
			doors = COALESCE($8, doors),
			seats = COALESCE($9, seats),
			features = $10,
			updated_at = NOW()
		WHERE id = $11
		RETURNING `+listingColumns,
		f.Title, f.Description, f.Model, f.BodyType, f.PricePerDay,
		f.FuelType, f.Gearbox, f.Doors, f.Seats, features, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update listing fields: %w", err)
	}
	return l, nil
}

func (r *ListingRepo) CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := map[domain.ListingStatus]int{
		domain.ListingStatusPending:  0,
		domain.ListingStatusApproved: 0,
		domain.ListingStatusRejected: 0,
	}
	for rows.Next() {
		var status domain.ListingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
