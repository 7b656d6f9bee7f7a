package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantQty  string
		wantUnit string
	}{
		{name: "plain decimal with unit", text: "2 cups", wantQty: "2", wantUnit: "cup"},
		{name: "simple fraction", text: "1/2 cup", wantQty: "0.5", wantUnit: "cup"},
		{name: "unit alias canonicalized", text: "3 tablespoons", wantQty: "3", wantUnit: "tbsp"},
		{name: "decimal quantity", text: "1.25 lb", wantQty: "1.25", wantUnit: "lb"},
		{name: "bare number defaults to count", text: "4", wantQty: "4", wantUnit: "count"},
		{name: "unit glued to number", text: "200g", wantQty: "200", wantUnit: "g"},
		{name: "container glued to number", text: "2cans", wantQty: "2", wantUnit: "can"},
		{name: "mixed number", text: "1 1/2 cups", wantQty: "1.5", wantUnit: "cup"},
		{name: "vulgar fraction", text: "½ tsp", wantQty: "0.5", wantUnit: "tsp"},
		{name: "vulgar fraction after integer", text: "1½ cups", wantQty: "1.5", wantUnit: "cup"},
		{name: "two word unit", text: "8 fl oz", wantQty: "8", wantUnit: "fl oz"},
		{name: "case and trailing period", text: "2 TBSP.", wantQty: "2", wantUnit: "tbsp"},
		{name: "container word kept singular", text: "2 cans", wantQty: "2", wantUnit: "can"},
		{name: "item name falls back to count", text: "3 eggs", wantQty: "3", wantUnit: "count"},
		{name: "parenthetical measured amount", text: "3 chicken breasts (1 lb)", wantQty: "1", wantUnit: "lb"},
		{name: "surrounding whitespace", text: "   5   ml  ", wantQty: "5", wantUnit: "ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.wantQty, got.Quantity.String())
			assert.Equal(t, tt.wantUnit, got.Unit)
		})
	}
}

func TestParseAmount_NoParse(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"1/0 cup",
		"1 1/0 cups",
		"0 cups",
		"0/5 tsp",
		"cups",
		"a pinch of salt",
		"2-3 cups",
		"1/2/3 cup",
		"two cups",
		"-1 cup",
		"1e3 g",
		"2x",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, ok := ParseAmount(in)
			assert.False(t, ok)
			assert.Equal(t, Amount{}, got)
		})
	}
}

func TestParseAmount_Totality(t *testing.T) {
	// Whatever comes in, a parse is either positive with a unit or nothing.
	inputs := []string{"1/", "/2", "1//2 cup", "((", "3 (", "9999999999999999999999 g", "1e5 g", "½", "🍳 2 eggs", "2 (14 oz) cans"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			got, ok := ParseAmount(in)
			if ok {
				assert.True(t, got.Quantity.IsPositive(), in)
				assert.NotEmpty(t, got.Unit, in)
			}
		}, in)
	}
}
