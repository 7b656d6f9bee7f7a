// Package ingredient holds the canonical ingredient record and resolves
// free-text ingredient names to it.
package ingredient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pantrysync/quantity"
)

// Ingredient is a canonical food entity.
type Ingredient struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	CanonicalUnit     string              `json:"canonical_unit"`
	CanonicalUnitType quantity.Kind       `json:"canonical_unit_type"`
	DensityGPerML     decimal.NullDecimal `json:"density_g_per_ml"`
	AvgWeightPerUnitG decimal.NullDecimal `json:"avg_weight_per_unit_g"`
}

// New returns an ingredient with a fresh id whose canonical unit is the base
// unit of kind. An unknown kind defaults to count.
func New(name string, kind quantity.Kind) Ingredient {
	if kind == quantity.KindUnknown {
		kind = quantity.Count
	}
	return Ingredient{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(name),
		CanonicalUnit:     quantity.BaseUnit(kind),
		CanonicalUnitType: kind,
	}
}

// Profile returns the conversion metadata used by the normalizer.
func (i Ingredient) Profile() quantity.Profile {
	return quantity.Profile{
		CanonicalUnit:     i.CanonicalUnit,
		DensityGPerML:     i.DensityGPerML,
		AvgWeightPerUnitG: i.AvgWeightPerUnitG,
	}
}

// Validate checks that the canonical unit belongs to the canonical unit type.
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("ingredient %q has no name", i.ID)
	}
	u, ok := quantity.LookupUnit(i.CanonicalUnit)
	if !ok {
		return fmt.Errorf("ingredient %q: unknown canonical unit %q", i.Name, i.CanonicalUnit)
	}
	if u.Kind != i.CanonicalUnitType {
		return fmt.Errorf("ingredient %q: canonical unit %q is %s, not %s", i.Name, i.CanonicalUnit, u.Kind, i.CanonicalUnitType)
	}
	return nil
}

// Complete fills in a missing canonical unit type from the canonical unit, or
// a missing canonical unit from the type, and validates the result.
func (i Ingredient) Complete() (Ingredient, error) {
	if i.CanonicalUnitType == quantity.KindUnknown {
		if u, ok := quantity.LookupUnit(i.CanonicalUnit); ok {
			i.CanonicalUnitType = u.Kind
		}
	}
	if strings.TrimSpace(i.CanonicalUnit) == "" {
		i.CanonicalUnit = quantity.BaseUnit(i.CanonicalUnitType)
	}
	if i.CanonicalUnitType == quantity.KindUnknown {
		return i, fmt.Errorf("ingredient %q has no canonical unit or unit type", i.Name)
	}
	return i, i.Validate()
}

// Catalog is the lookup side of an ingredient store.
type Catalog interface {
	// FindByName matches a stored name case-insensitively.
	FindByName(ctx context.Context, name string) (Ingredient, bool, error)
	// Candidates returns at most limit ingredients whose search key starts
	// with prefix, shortest names first.
	Candidates(ctx context.Context, prefix string, limit int) ([]Ingredient, error)
}

// Store is a Catalog that can also fetch by id and create records.
type Store interface {
	Catalog
	Get(ctx context.Context, id string) (Ingredient, bool, error)
	Create(ctx context.Context, name string, kind quantity.Kind) (Ingredient, error)
}
