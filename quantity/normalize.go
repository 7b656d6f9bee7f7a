package quantity

import (
	"github.com/shopspring/decimal"
)

// Profile carries the per-ingredient conversion metadata.
type Profile struct {
	CanonicalUnit     string
	DensityGPerML     decimal.NullDecimal
	AvgWeightPerUnitG decimal.NullDecimal
}

// Normalize converts qty of unit into the profile's canonical unit.
//
// Units of the same kind use the fixed factor table. Volume and weight are
// bridged with the density, count and weight with the average unit weight,
// count and volume with both. ok is false when the unit is unknown, when the
// needed metadata is missing or when the result is not positive.
func Normalize(p Profile, qty decimal.Decimal, unit string) (Amount, bool) {
	if !qty.IsPositive() {
		return Amount{}, false
	}
	from, ok := LookupUnit(unit)
	if !ok {
		return Amount{}, false
	}
	to, ok := LookupUnit(p.CanonicalUnit)
	if !ok {
		return Amount{}, false
	}

	base, ok := p.bridge(from.ToBase(qty), from.Kind, to.Kind)
	if !ok {
		return Amount{}, false
	}

	out := to.FromBase(base)
	if !out.IsPositive() {
		return Amount{}, false
	}
	return Amount{Quantity: out, Unit: to.Symbol}, true
}

// bridge converts q from the base unit of one kind to the base unit of another.
func (p Profile) bridge(q decimal.Decimal, from, to Kind) (decimal.Decimal, bool) {
	if from == to {
		return q, true
	}

	density, hasDensity := positive(p.DensityGPerML)
	avg, hasAvg := positive(p.AvgWeightPerUnitG)

	switch {
	case from == Volume && to == Weight && hasDensity:
		return q.Mul(density), true
	case from == Weight && to == Volume && hasDensity:
		return q.Div(density), true
	case from == Count && to == Weight && hasAvg:
		return q.Mul(avg), true
	case from == Weight && to == Count && hasAvg:
		return q.Div(avg), true
	case from == Volume && to == Count && hasDensity && hasAvg:
		return q.Mul(density).Div(avg), true
	case from == Count && to == Volume && hasDensity && hasAvg:
		return q.Mul(avg).Div(density), true
	}
	return decimal.Decimal{}, false
}

func positive(n decimal.NullDecimal) (decimal.Decimal, bool) {
	if !n.Valid || !n.Decimal.IsPositive() {
		return decimal.Decimal{}, false
	}
	return n.Decimal, true
}

// Convertible reports whether unit can be normalized for the profile.
func Convertible(p Profile, unit string) bool {
	_, ok := Normalize(p, decimal.NewFromInt(1), unit)
	return ok
}
