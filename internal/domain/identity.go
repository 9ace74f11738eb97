package domain

import (
	"context"
	"time"
)

// Caller is the authenticated actor behind a request.
type Caller struct {
	ID    string
	Email string
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	// EmailsByIDs returns the emails of the ids that still exist. Missing
	// ids are absent from the map.
	EmailsByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// EmailCache fronts UserRepository.EmailsByIDs.
type EmailCache interface {
	GetEmails(ctx context.Context, ids []string) (map[string]string, error)
	SetEmails(ctx context.Context, emails map[string]string) error
}
