package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/CaioWing/paddock/internal/domain"
)

// Messages surfaced to clients for edit validation failures.
const (
	MsgMissingFields      = "Missing fields"
	MsgInvalidFields      = "Invalid fields"
	MsgInvalidFuelType    = "Invalid Fuel Type"
	MsgInvalidGearboxType = "Invalid Gearbox Type"
	MsgInvalidStatus      = "Invalid status"
)

// EditListingInput carries an edit as received. Numeric fields keep their
// textual form so that coercion failures surface as validation errors. An
// empty optional field means "not supplied"; nil Features means omitted.
type EditListingInput struct {
	Title       string
	Description string
	PricePerDay string
	Model       string
	BodyType    string
	FuelType    string
	Gearbox     string
	Doors       string
	Seats       string
	Features    []string
}

// ValidateListingEdit checks an edit and converts it to domain fields.
// Checks run in a fixed order: required fields, numeric fields, enums.
func ValidateListingEdit(in EditListingInput) (domain.ListingFields, error) {
	required := []struct{ name, value string }{
		{"title", in.Title},
		{"desc", in.Description},
		{"pricePerDay", in.PricePerDay},
		{"model", in.Model},
		{"bodyType", in.BodyType},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.ListingFields{}, domain.NewFieldError(f.name, MsgMissingFields)
		}
	}

	// More than two decimal places is rejected rather than rounded.
	price, err := strconv.ParseFloat(strings.TrimSpace(in.PricePerDay), 64)
	if err != nil || !domain.ValidPrice(price) {
		return domain.ListingFields{}, domain.NewFieldError("pricePerDay", MsgInvalidFields)
	}

	fields := domain.ListingFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Model:       strings.TrimSpace(in.Model),
		BodyType:    strings.TrimSpace(in.BodyType),
		PricePerDay: price,
		Features:    normalizeFeatures(in.Features),
	}

	if fields.Doors, err = optionalPositiveInt("doors", in.Doors); err != nil {
		return domain.ListingFields{}, err
	}
	if fields.Seats, err = optionalPositiveInt("seats", in.Seats); err != nil {
		return domain.ListingFields{}, err
	}

	if v := strings.TrimSpace(in.FuelType); v != "" {
		ft := domain.FuelType(v)
		if !ft.Valid() {
			return domain.ListingFields{}, domain.NewFieldError("fuelType", MsgInvalidFuelType)
		}
		fields.FuelType = &ft
	}
	if v := strings.TrimSpace(in.Gearbox); v != "" {
		gb := domain.Gearbox(v)
		if !gb.Valid() {
			return domain.ListingFields{}, domain.NewFieldError("gearbox", MsgInvalidGearboxType)
		}
		fields.Gearbox = &gb
	}

	return fields, nil
}

// optionalPositiveInt accepts whole numbers written as "4" or "4.0".
func optionalPositiveInt(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return nil, domain.NewFieldError(field, MsgInvalidFields)
	}
	n := int(f)
	return &n, nil
}

// normalizeFeatures treats features as a set: blanks and duplicates are
// dropped, first occurrence order is kept.
func normalizeFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
