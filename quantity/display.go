package quantity

import (
	"github.com/shopspring/decimal"
)

const displayPlaces = 2

var thousand = decimal.NewFromInt(1000)

// Express renders a canonical amount for people. When preferred is a unit the
// profile can convert into, the amount is expressed in it ("10 ml" as
// "2 tsp"); otherwise Friendly is used.
func Express(p Profile, canonical Amount, preferred string) Amount {
	if SameUnit(preferred, canonical.Unit) {
		if q := canonical.Quantity.Round(displayPlaces); q.IsPositive() {
			return Amount{Quantity: q, Unit: canonical.Unit}
		}
		return canonical
	}
	if preferred != "" {
		target := p
		target.CanonicalUnit = preferred
		if out, ok := Normalize(target, canonical.Quantity, canonical.Unit); ok {
			if q := out.Quantity.Round(displayPlaces); q.IsPositive() {
				return Amount{Quantity: q, Unit: out.Unit}
			}
		}
	}
	return Friendly(canonical)
}

// Friendly scales base units up once they reach a thousand (g to kg, ml to l)
// and rounds to two decimal places.
func Friendly(a Amount) Amount {
	switch CanonicalToken(a.Unit) {
	case Gram:
		if a.Quantity.GreaterThanOrEqual(thousand) {
			return Amount{Quantity: a.Quantity.Div(thousand).Round(displayPlaces), Unit: "kg"}
		}
	case Milliliter:
		if a.Quantity.GreaterThanOrEqual(thousand) {
			return Amount{Quantity: a.Quantity.Div(thousand).Round(displayPlaces), Unit: "l"}
		}
	}
	q := a.Quantity.Round(displayPlaces)
	if !q.IsPositive() {
		q = a.Quantity
	}
	return Amount{Quantity: q, Unit: a.Unit}
}
