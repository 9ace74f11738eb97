package domain

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "PENDING"
	ListingStatusApproved ListingStatus = "APPROVED"
	ListingStatusRejected ListingStatus = "REJECTED"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusPending, ListingStatusApproved, ListingStatusRejected:
		return true
	}
	return false
}

type FuelType string

const (
	FuelTypePetrol FuelType = "PETROL"
	FuelTypeDiesel FuelType = "DIESEL"
	FuelTypeEV     FuelType = "EV"
	FuelTypeHybrid FuelType = "HYBRID"
)

func (f FuelType) Valid() bool {
	switch f {
	case FuelTypePetrol, FuelTypeDiesel, FuelTypeEV, FuelTypeHybrid:
		return true
	}
	return false
}

type Gearbox string

const (
	GearboxManual    Gearbox = "MANUAL"
	GearboxAutomatic Gearbox = "AUTOMATIC"
)

func (g Gearbox) Valid() bool {
	return g == GearboxManual || g == GearboxAutomatic
}

type Listing struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"desc"`
	Model       string        `json:"model"`
	BodyType    string        `json:"bodyType"`
	PricePerDay float64       `json:"pricePerDay"`
	FuelType    FuelType      `json:"fuelType"`
	Gearbox     Gearbox       `json:"gearbox"`
	Doors       int           `json:"doors"`
	Seats       int           `json:"seats"`
	Features    []string      `json:"features"`
	Status      ListingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ListingFields is a validated field-level edit. Nil pointers leave the
// current column value in place; Features always overwrites.
type ListingFields struct {
	Title       string
	Description string
	Model       string
	BodyType    string
	PricePerDay float64
	FuelType    *FuelType
	Gearbox     *Gearbox
	Doors       *int
	Seats       *int
	Features    []string
}

type ListingFilter struct {
	Status  *ListingStatus
	Page    int
	PerPage int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	Count(ctx context.Context, filter ListingFilter) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus) (*Listing, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields ListingFields) (*Listing, error)
	CountByStatus(ctx context.Context) (map[ListingStatus]int, error)
}

// MaxPricePerDay is the largest value listings.price_per_day (NUMERIC(10,2)) holds.
const MaxPricePerDay = 99999999.99

// ValidPrice reports whether p is storable without rounding: positive, at
// most two decimal places and within MaxPricePerDay.
func ValidPrice(p float64) bool {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 || p > MaxPricePerDay {
		return false
	}
	cents := math.Round(p * 100)
	return cents >= 1 && math.Abs(p-cents/100) < 1e-7
}
