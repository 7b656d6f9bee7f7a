package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pantrysync/ingredient"
	"pantrysync/quantity"
)

// Source is one ingredient requirement feeding an aggregate, e.g. a recipe
// ingredient of a planned meal. The ingredient is given by id or by name; the
// amount either structured or as text.
type Source struct {
	IngredientID string              `json:"ingredient_id,omitempty"`
	Name         string              `json:"name,omitempty"`
	Amount       string              `json:"amount,omitempty"`
	Quantity     decimal.NullDecimal `json:"quantity"`
	Unit         string              `json:"unit,omitempty"`
	// Scale multiplies the amount, e.g. planned servings over recipe servings.
	Scale decimal.NullDecimal `json:"scale"`
}

func (s Source) describe() string {
	amount := strings.TrimSpace(s.Amount)
	if amount == "" && s.Quantity.Valid {
		amount = strings.TrimSpace(s.Quantity.Decimal.String() + " " + s.Unit)
	}
	return strings.TrimSpace(amount + " " + s.Name)
}

// Need is the summed canonical requirement for one ingredient.
type Need struct {
	Ingredient  ingredient.Ingredient `json:"ingredient"`
	Quantity    quantity.Amount       `json:"quantity"`
	DisplayUnit string                `json:"display_unit,omitempty"`
	Sources     int                   `json:"sources"`
}

// Skipped is a source left out of the totals.
type Skipped struct {
	Source       Source `json:"source"`
	IngredientID string `json:"ingredient_id,omitempty"`
	Reason       string `json:"reason"`
}

// Aggregate holds needs in order of first appearance plus the sources that
// could not be counted.
type Aggregate struct {
	Needs   []Need    `json:"needs"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Totals maps ingredient id to canonical quantity.
func (a Aggregate) Totals() map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(a.Needs))
	for _, n := range a.Needs {
		totals[n.Ingredient.ID] = n.Quantity.Quantity
	}
	return totals
}

// Lines turns the aggregate into new list lines: one per need, with a
// display amount in the unit the first source used, then one note-only line
// per skipped source.
func (a Aggregate) Lines() []Line {
	lines := make([]Line, 0, len(a.Needs)+len(a.Skipped))
	for _, n := range a.Needs {
		l := Line{
			ID:             uuid.NewString(),
			IngredientID:   n.Ingredient.ID,
			IngredientName: n.Ingredient.Name,
		}
		l.setCanonical(n.Quantity)
		l.setDisplay(quantity.Express(n.Ingredient.Profile(), n.Quantity, n.DisplayUnit))
		lines = append(lines, l)
	}
	for _, s := range a.Skipped {
		lines = append(lines, Line{
			ID:             uuid.NewString(),
			IngredientID:   s.IngredientID,
			IngredientName: s.Source.Name,
			Note:           s.Source.describe(),
		})
	}
	return lines
}

// Aggregator sums sources per ingredient.
type Aggregator struct {
	store    ingredient.Store
	resolver *ingredient.Resolver
}

func NewAggregator(store ingredient.Store, vocab ingredient.Vocabulary) *Aggregator {
	return &Aggregator{
		store:    store,
		resolver: ingredient.NewResolver(store, vocab),
	}
}

// Aggregate resolves and normalizes every source. A name with no match
// creates a new ingredient. Only store failures are returned as errors.
func (a *Aggregator) Aggregate(ctx context.Context, sources []Source) (Aggregate, error) {
	var agg Aggregate
	index := make(map[string]int)

	for _, src := range sources {
		amount, ok := sourceAmount(src)

		ing, found, err := a.ingredientFor(ctx, src, amount.Unit)
		if err != nil {
			return Aggregate{}, err
		}
		if !found {
			agg.Skipped = append(agg.Skipped, Skipped{Source: src, Reason: "no ingredient"})
			continue
		}
		if !ok {
			agg.Skipped = append(agg.Skipped, Skipped{Source: src, IngredientID: ing.ID, Reason: "no usable amount"})
			continue
		}

		canonical, ok := quantity.Normalize(ing.Profile(), amount.Quantity, amount.Unit)
		if !ok {
			agg.Skipped = append(agg.Skipped, Skipped{
				Source:       src,
				IngredientID: ing.ID,
				Reason:       fmt.Sprintf("%s does not convert to %s", amount.Unit, ing.CanonicalUnit),
			})
			continue
		}

		if i, seen := index[ing.ID]; seen {
			agg.Needs[i].Quantity.Quantity = agg.Needs[i].Quantity.Quantity.Add(canonical.Quantity)
			agg.Needs[i].Sources++
			continue
		}
		index[ing.ID] = len(agg.Needs)
		agg.Needs = append(agg.Needs, Need{
			Ingredient:  ing,
			Quantity:    canonical,
			DisplayUnit: amount.Unit,
			Sources:     1,
		})
	}
	return agg, nil
}

func (a *Aggregator) ingredientFor(ctx context.Context, src Source, unit string) (ingredient.Ingredient, bool, error) {
	if src.IngredientID != "" {
		ing, ok, err := a.store.Get(ctx, src.IngredientID)
		if err != nil {
			return ingredient.Ingredient{}, false, fmt.Errorf("get ingredient %s: %w", src.IngredientID, err)
		}
		return ing, ok, nil
	}
	if strings.TrimSpace(src.Name) == "" {
		return ingredient.Ingredient{}, false, nil
	}

	m, ok, err := a.resolver.Resolve(ctx, src.Name)
	if err != nil {
		return ingredient.Ingredient{}, false, fmt.Errorf("resolve %q: %w", src.Name, err)
	}
	if ok {
		return m.Ingredient, true, nil
	}

	kind := quantity.Count
	if u, known := quantity.LookupUnit(unit); known {
		kind = u.Kind
	}
	ing, err := a.store.Create(ctx, strings.TrimSpace(src.Name), kind)
	if err != nil {
		return ingredient.Ingredient{}, false, fmt.Errorf("create ingredient %q: %w", src.Name, err)
	}
	return ing, true, nil
}

func sourceAmount(src Source) (quantity.Amount, bool) {
	var amount quantity.Amount
	switch {
	case src.Quantity.Valid && src.Quantity.Decimal.IsPositive():
		amount = quantity.Amount{Quantity: src.Quantity.Decimal, Unit: quantity.CanonicalToken(src.Unit)}
		if amount.Unit == "" {
			amount.Unit = quantity.Each
		}
	case strings.TrimSpace(src.Amount) != "":
		a, ok := quantity.ParseAmount(src.Amount)
		if !ok {
			return quantity.Amount{}, false
		}
		amount = a
	default:
		return quantity.Amount{}, false
	}

	if src.Scale.Valid {
		if !src.Scale.Decimal.IsPositive() {
			return quantity.Amount{}, false
		}
		amount.Quantity = amount.Quantity.Mul(src.Scale.Decimal)
	}
	return amount, true
}
