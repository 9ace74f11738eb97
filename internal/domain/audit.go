package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionApproved AuditAction = "APPROVED"
	AuditActionRejected AuditAction = "REJECTED"
	AuditActionEdited   AuditAction = "EDITED"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionApproved, AuditActionRejected, AuditActionEdited:
		return true
	}
	return false
}

// AuditEntry is immutable once stored. CallerID and ListingID are weak
// references: neither is owned by the entry.
type AuditEntry struct {
	ID        uuid.UUID   `json:"id"`
	Action    AuditAction `json:"action"`
	CallerID  string      `json:"callerId"`
	ListingID uuid.UUID   `json:"listingId"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuditView is an entry enriched for display.
type AuditView struct {
	AuditEntry
	ListingTitle string `json:"listingTitle"`
	CallerEmail  string `json:"callerEmail"`
}

type AuditFilter struct {
	Action    *AuditAction
	ListingID *uuid.UUID
	Page      int
	PerPage   int // 0 returns every matching entry
}

type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]*AuditView, int, error)
}
