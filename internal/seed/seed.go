// Package seed loads listings and admin users from a YAML fixture.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CaioWing/paddock/internal/domain"
)

type Fixture struct {
	Users    []User    `yaml:"users"`
	Listings []Listing `yaml:"listings"`
}

type User struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Listing struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"desc"`
	Model       string   `yaml:"model"`
	BodyType    string   `yaml:"bodyType"`
	PricePerDay float64  `yaml:"pricePerDay"`
	FuelType    string   `yaml:"fuelType"`
	Gearbox     string   `yaml:"gearbox"`
	Doors       int      `yaml:"doors"`
	Seats       int      `yaml:"seats"`
	Features    []string `yaml:"features"`
	Status      string   `yaml:"status"`
}

func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a fixture. Unknown keys are rejected so that
// typos do not silently drop fields.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode fixture: %v", domain.ErrInvalidInput, err)
	}

	for i, u := range f.Users {
		if u.ID == "" || u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("%w: users[%d]: id, email and password are required", domain.ErrInvalidInput, i)
		}
	}
	for i, l := range f.Listings {
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("listings[%d] %q: %w", i, l.Title, err)
		}
	}
	return &f, nil
}

func (l Listing) validate() error {
	required := []struct{ name, value string }{
		{"title", l.Title},
		{"desc", l.Description},
		{"model", l.Model},
		{"bodyType", l.BodyType},
	}
	for _, f := range required {
		if f.value == "" {
			return domain.NewFieldError(f.name, "Missing fields")
		}
	}

	switch {
	case !domain.ValidPrice(l.PricePerDay):
		return domain.NewFieldError("pricePerDay", "Invalid fields")
	case l.Doors <= 0:
		return domain.NewFieldError("doors", "Invalid fields")
	case l.Seats <= 0:
		return domain.NewFieldError("seats", "Invalid fields")
	case !domain.FuelType(l.FuelType).Valid():
		return domain.NewFieldError("fuelType", "Invalid Fuel Type")
	case !domain.Gearbox(l.Gearbox).Valid():
		return domain.NewFieldError("gearbox", "Invalid Gearbox Type")
	case l.Status != "" && !domain.ListingStatus(l.Status).Valid():
		return domain.NewFieldError("status", "Invalid status")
	}
	return nil
}

func (l Listing) toDomain() *domain.Listing {
	status := domain.ListingStatus(l.Status)
	if status == "" {
		status = domain.ListingStatusPending
	}
	features := l.Features
	if features == nil {
		features = []string{}
	}
	return &domain.Listing{
		Title:       l.Title,
		Description: l.Description,
		Model:       l.Model,
		BodyType:    l.BodyType,
		PricePerDay: l.PricePerDay,
		FuelType:    domain.FuelType(l.FuelType),
		Gearbox:     domain.Gearbox(l.Gearbox),
		Doors:       l.Doors,
		Seats:       l.Seats,
		Features:    features,
		Status:      status,
	}
}

type UserCreator interface {
	CreateUser(ctx context.Context, id, email, password string) (*domain.User, error)
}

type Result struct {
	UsersCreated    int
	UsersSkipped    int
	ListingsCreated int
}

// Apply writes the fixture. Users that already exist are skipped so the
// command can be re-run; listings are always inserted.
func Apply(ctx context.Context, f *Fixture, users UserCreator, listings domain.ListingRepository, log *slog.Logger) (Result, error) {
	var res Result

	for _, u := range f.Users {
		if _, err := users.CreateUser(ctx, u.ID, u.Email, u.Password); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				log.Info("user exists, skipping", "email", u.Email)
				res.UsersSkipped++
				continue
			}
			return res, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		res.UsersCreated++
	}

	for _, l := range f.Listings {
		if err := listings.Create(ctx, l.toDomain()); err != nil {
			return res, fmt.Errorf("create listing %q: %w", l.Title, err)
		}
		res.ListingsCreated++
	}

	return res, nil
}
