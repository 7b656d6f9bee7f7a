package reconcile

import (
	"pantrysync/ingredient"
	"pantrysync/quantity"
)

// Availability is the pantry stock of one ingredient.
//
// Canonical sums every line that has, or can be normalized to, the
// ingredient's canonical unit. Display keeps the lines that could not: summed
// when they all share a unit, otherwise the most recent line's own amount.
type Availability struct {
	Canonical    quantity.Amount `json:"canonical"`
	HasCanonical bool            `json:"has_canonical"`
	Display      quantity.Amount `json:"display"`
	HasDisplay   bool            `json:"has_display"`
}

// PantryTotals sums pantry lines per ingredient id. Lines are expected oldest
// first; ingredients supplies the conversion metadata and may be missing
// entries, in which case canonical amounts are only summed when their units
// agree.
func PantryTotals(lines []Line, ingredients map[string]ingredient.Ingredient) map[string]Availability {
	totals := make(map[string]Availability)
	displays := make(map[string][]quantity.Amount)

	for _, l := range lines {
		if l.IngredientID == "" {
			continue
		}
		ing, hasIng := ingredients[l.IngredientID]
		av := totals[l.IngredientID]

		if c, ok := canonicalFor(l, ing, hasIng); ok {
			if !av.HasCanonical {
				av.Canonical, av.HasCanonical = c, true
				totals[l.IngredientID] = av
				continue
			}
			if quantity.SameUnit(av.Canonical.Unit, c.Unit) {
				av.Canonical.Quantity = av.Canonical.Quantity.Add(c.Quantity)
				totals[l.IngredientID] = av
				continue
			}
		}

		if d, ok := displayOf(l); ok {
			displays[l.IngredientID] = append(displays[l.IngredientID], d)
		}
		totals[l.IngredientID] = av
	}

	for id, ds := range displays {
		av := totals[id]
		av.Display, av.HasDisplay = combineDisplays(ds), true
		totals[id] = av
	}
	return totals
}

// canonicalFor returns the line's amount in the ingredient's canonical unit,
// normalizing a stale canonical unit or the display amount when needed.
func canonicalFor(l Line, ing ingredient.Ingredient, hasIng bool) (quantity.Amount, bool) {
	if c, ok := l.Canonical(); ok {
		if !hasIng || quantity.SameUnit(c.Unit, ing.CanonicalUnit) {
			return c, true
		}
		return quantity.Normalize(ing.Profile(), c.Quantity, c.Unit)
	}
	if !hasIng {
		return quantity.Amount{}, false
	}
	if d, ok := displayOf(l); ok {
		return quantity.Normalize(ing.Profile(), d.Quantity, d.Unit)
	}
	return quantity.Amount{}, false
}

// displayOf returns the display amount, or the note parsed as one.
func displayOf(l Line) (quantity.Amount, bool) {
	if d, ok := l.Display(); ok {
		return d, true
	}
	if l.Note != "" {
		return quantity.ParseAmount(l.Note)
	}
	return quantity.Amount{}, false
}

func combineDisplays(ds []quantity.Amount) quantity.Amount {
	sum := ds[0]
	for _, d := range ds[1:] {
		if !quantity.SameUnit(sum.Unit, d.Unit) {
			return ds[len(ds)-1]
		}
		sum.Quantity = sum.Quantity.Add(d.Quantity)
	}
	return sum
}
