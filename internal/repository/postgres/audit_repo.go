package postgres

import (
	"context"
	"fmt"

	"github.com/CaioWing/paddock/internal/domain"
)

type AuditRepo struct {
	db DBTX
}

func NewAuditRepo(db DBTX) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO audit_log (action, caller_id, listing_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, entry.Action, entry.CallerID, entry.ListingID).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns entries newest first, joined with the referenced listing's
// title. CallerEmail is left empty; resolving it is the identity service's job.
func (r *AuditRepo) List(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditView, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if f.Action != nil {
		args = append(args, *f.Action)
		where += fmt.Sprintf(" AND a.action = $%d", len(args))
	}
	if f.ListingID != nil {
		args = append(args, *f.ListingID)
		where += fmt.Sprintf(" AND a.listing_id = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log a "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.action, a.caller_id, a.listing_id, a.created_at, COALESCE(l.title, '')
		FROM audit_log a
		LEFT JOIN listings l ON l.id = a.listing_id
		%s
		ORDER BY a.created_at DESC, a.seq DESC
	`, where)
	if f.PerPage > 0 {
		limit, offset := pageBounds(f.Page, f.PerPage)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.AuditView{}
	for rows.Next() {
		v := &domain.AuditView{}
		if err := rows.Scan(
			&v.ID, &v.Action, &v.CallerID, &v.ListingID, &v.CreatedAt, &v.ListingTitle,
		); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, total, nil
}
