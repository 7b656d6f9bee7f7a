// Package reconcile subtracts pantry stock from shopping list needs.
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"pantrysync/quantity"
)

// Line is one quantity of one ingredient on a shopping list or in a pantry.
//
// A line carries at least one of a display amount, a canonical amount or a
// note. Canonical fields use the ingredient's canonical unit. Applied fields
// record how much pantry stock has already been deducted from a list line.
type Line struct {
	ID                string              `json:"id"`
	IngredientID      string              `json:"ingredient_id"`
	IngredientName    string              `json:"ingredient_name,omitempty"`
	DisplayQuantity   decimal.NullDecimal `json:"display_quantity"`
	DisplayUnit       string              `json:"display_unit,omitempty"`
	CanonicalQuantity decimal.NullDecimal `json:"canonical_quantity"`
	CanonicalUnit     string              `json:"canonical_unit,omitempty"`
	Note              string              `json:"note,omitempty"`
	AppliedQuantity   decimal.NullDecimal `json:"applied_quantity"`
	AppliedUnit       string              `json:"applied_unit,omitempty"`
}

// Canonical returns the canonical amount when it is usable: positive and with
// a unit.
func (l Line) Canonical() (quantity.Amount, bool) {
	return amountOf(l.CanonicalQuantity, l.CanonicalUnit)
}

// Display returns the display amount when it is usable.
func (l Line) Display() (quantity.Amount, bool) {
	return amountOf(l.DisplayQuantity, l.DisplayUnit)
}

// Applied returns the pantry stock already deducted from the line in unit,
// or zero when it was recorded in another unit.
func (l Line) Applied(unit string) decimal.Decimal {
	if !l.AppliedQuantity.Valid || !quantity.SameUnit(l.AppliedUnit, unit) {
		return decimal.Zero
	}
	return l.AppliedQuantity.Decimal
}

// Empty reports whether the line has no quantity information at all.
func (l Line) Empty() bool {
	_, hasCanonical := l.Canonical()
	_, hasDisplay := l.Display()
	return !hasCanonical && !hasDisplay && strings.TrimSpace(l.Note) == ""
}

func (l *Line) setCanonical(a quantity.Amount) {
	l.CanonicalQuantity = decimal.NewNullDecimal(a.Quantity)
	l.CanonicalUnit = a.Unit
}

func (l *Line) setDisplay(a quantity.Amount) {
	l.DisplayQuantity = decimal.NewNullDecimal(a.Quantity)
	l.DisplayUnit = a.Unit
}

func (l *Line) setApplied(q decimal.Decimal, unit string) {
	if q.IsZero() {
		l.AppliedQuantity = decimal.NullDecimal{}
		l.AppliedUnit = ""
		return
	}
	l.AppliedQuantity = decimal.NewNullDecimal(q)
	l.AppliedUnit = unit
}

func amountOf(q decimal.NullDecimal, unit string) (quantity.Amount, bool) {
	if !q.Valid || !q.Decimal.IsPositive() || strings.TrimSpace(unit) == "" {
		return quantity.Amount{}, false
	}
	return quantity.Amount{Quantity: q.Decimal, Unit: unit}, true
}
