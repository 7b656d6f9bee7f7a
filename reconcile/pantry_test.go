package reconcile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantrysync/ingredient"
	"pantrysync/quantity"
)

func TestPantryTotals(t *testing.T) {
	milk := ingredient.Ingredient{ID: "milk", Name: "Milk", CanonicalUnit: "ml", CanonicalUnitType: quantity.Volume,
		DensityGPerML: dec("1.03")}
	ingredients := catalog(milk, eggs, tomato)

	tests := []struct {
		name          string
		lines         []Line
		id            string
		wantCanonical string
		wantUnit      string
		wantDisplay   string
		wantDispUnit  string
	}{
		{
			name: "canonical lines are summed",
			lines: []Line{
				{IngredientID: "eggs", CanonicalQuantity: dec("6"), CanonicalUnit: "count"},
				{IngredientID: "eggs", CanonicalQuantity: dec("12"), CanonicalUnit: "count"},
			},
			id: "eggs", wantCanonical: "18", wantUnit: "count",
		},
		{
			name: "display amounts are normalized into the total",
			lines: []Line{
				{IngredientID: "milk", CanonicalQuantity: dec("500"), CanonicalUnit: "ml"},
				{IngredientID: "milk", DisplayQuantity: dec("1"), DisplayUnit: "l"},
				{IngredientID: "milk", Note: "2 cups"},
			},
			id: "milk", wantCanonical: "1980", wantUnit: "ml",
		},
		{
			name: "unconvertible display lines share a unit",
			lines: []Line{
				{IngredientID: "tomato", DisplayQuantity: dec("2"), DisplayUnit: "can"},
				{IngredientID: "tomato", DisplayQuantity: dec("1"), DisplayUnit: "cans"},
			},
			id: "tomato", wantDisplay: "3", wantDispUnit: "can",
		},
		{
			name: "mixed display units keep the most recent line",
			lines: []Line{
				{IngredientID: "tomato", DisplayQuantity: dec("2"), DisplayUnit: "can"},
				{IngredientID: "tomato", DisplayQuantity: dec("1"), DisplayUnit: "jar"},
			},
			id: "tomato", wantDisplay: "1", wantDispUnit: "jar",
		},
		{
			name: "canonical and display fallback side by side",
			lines: []Line{
				{IngredientID: "tomato", CanonicalQuantity: dec("4"), CanonicalUnit: "count"},
				{IngredientID: "tomato", DisplayQuantity: dec("2"), DisplayUnit: "can"},
			},
			id: "tomato", wantCanonical: "4", wantUnit: "count", wantDisplay: "2", wantDispUnit: "can",
		},
		{
			name: "unknown ingredient sums matching canonical units",
			lines: []Line{
				{IngredientID: "rice", CanonicalQuantity: dec("250"), CanonicalUnit: "g"},
				{IngredientID: "rice", CanonicalQuantity: dec("750"), CanonicalUnit: "g"},
			},
			id: "rice", wantCanonical: "1000", wantUnit: "g",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := PantryTotals(tt.lines, ingredients)
			av, ok := totals[tt.id]
			require.True(t, ok)

			if tt.wantCanonical != "" {
				require.True(t, av.HasCanonical)
				assert.True(t, decimal.RequireFromString(tt.wantCanonical).Equal(av.Canonical.Quantity), av.Canonical.Quantity.String())
				assert.Equal(t, tt.wantUnit, av.Canonical.Unit)
			} else {
				assert.False(t, av.HasCanonical)
			}
			if tt.wantDisplay != "" {
				require.True(t, av.HasDisplay)
				assert.True(t, decimal.RequireFromString(tt.wantDisplay).Equal(av.Display.Quantity), av.Display.Quantity.String())
				assert.Equal(t, tt.wantDispUnit, av.Display.Unit)
			} else {
				assert.False(t, av.HasDisplay)
			}
		})
	}
}

func TestPantryTotals_SkipsLinesWithoutIngredient(t *testing.T) {
	totals := PantryTotals([]Line{{Note: "2 rolls of foil"}}, nil)
	assert.Empty(t, totals)
}

type directory map[string]string

func (d directory) FamilyOf(_ context.Context, userID string) (string, bool, error) {
	f, ok := d[userID]
	return f, ok, nil
}

func TestResolveScope(t *testing.T) {
	dir := directory{"ana": "smiths", "eve": ""}

	tests := []struct {
		name string
		list List
		want Scope
	}{
		{name: "list family wins", list: List{ID: "1", OwnerID: "bo", FamilyID: "jones"}, want: Scope{ScopeFamily, "jones"}},
		{name: "owner family", list: List{ID: "2", OwnerID: "ana"}, want: Scope{ScopeFamily, "smiths"}},
		{name: "owner without family", list: List{ID: "3", OwnerID: "bo"}, want: Scope{ScopePersonal, "bo"}},
		{name: "empty family id is personal", list: List{ID: "4", OwnerID: "eve"}, want: Scope{ScopePersonal, "eve"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveScope(context.Background(), dir, tt.list)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveScope(context.Background(), dir, List{ID: "orphan"})
	assert.ErrorIs(t, err, ErrUnownedList)
}

func TestLine_Empty(t *testing.T) {
	assert.True(t, Line{ID: "a", Note: "  "}.Empty())
	assert.False(t, Line{ID: "a", Note: "a dozen"}.Empty())
	assert.False(t, Line{ID: "a", DisplayQuantity: dec("1"), DisplayUnit: "cup"}.Empty())
	assert.True(t, Line{ID: "a", CanonicalQuantity: dec("0"), CanonicalUnit: "g"}.Empty())
}
