package quantity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestNormalize(t *testing.T) {
	milk := Profile{CanonicalUnit: Milliliter}
	flour := Profile{CanonicalUnit: Gram, DensityGPerML: nullDec("0.53")}
	eggs := Profile{CanonicalUnit: Each, AvgWeightPerUnitG: nullDec("50")}
	honey := Profile{CanonicalUnit: Each, DensityGPerML: nullDec("1.4"), AvgWeightPerUnitG: nullDec("340")}
	chicken := Profile{CanonicalUnit: Gram, AvgWeightPerUnitG: nullDec("200")}

	tests := []struct {
		name     string
		profile  Profile
		qty      string
		unit     string
		wantQty  string
		wantUnit string
	}{
		{name: "teaspoons to milliliters", profile: milk, qty: "3", unit: "tsp", wantQty: "15", wantUnit: "ml"},
		{name: "tablespoons to milliliters", profile: milk, qty: "2", unit: "tablespoons", wantQty: "30", wantUnit: "ml"},
		{name: "cups to milliliters", profile: milk, qty: "0.5", unit: "cup", wantQty: "120", wantUnit: "ml"},
		{name: "liters to milliliters", profile: milk, qty: "1.5", unit: "L", wantQty: "1500", wantUnit: "ml"},
		{name: "ounces to grams", profile: flour, qty: "2", unit: "oz", wantQty: "56.699", wantUnit: "g"},
		{name: "pounds to grams", profile: flour, qty: "1", unit: "lb", wantQty: "453.592", wantUnit: "g"},
		{name: "volume to weight through density", profile: flour, qty: "1", unit: "cup", wantQty: "127.2", wantUnit: "g"},
		{name: "count to weight through average weight", profile: chicken, qty: "3", unit: "count", wantQty: "600", wantUnit: "g"},
		{name: "weight to count through average weight", profile: eggs, qty: "1", unit: "kg", wantQty: "20", wantUnit: "count"},
		{name: "volume to count through density and average weight", profile: honey, qty: "1", unit: "cup", wantQty: "0.9882352941176471", wantUnit: "count"},
		{name: "count stays count", profile: eggs, qty: "20", unit: "pieces", wantQty: "20", wantUnit: "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.profile, dec(tt.qty), tt.unit)
			require.True(t, ok)
			assert.True(t, dec(tt.wantQty).Equal(got.Quantity), "got %s", got.Quantity)
			assert.Equal(t, tt.wantUnit, got.Unit)
		})
	}
}

func TestNormalize_Impossible(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		qty     string
		unit    string
	}{
		{name: "volume into weight without density", profile: Profile{CanonicalUnit: Gram}, qty: "3", unit: "tsp"},
		{name: "count into weight without average weight", profile: Profile{CanonicalUnit: Gram}, qty: "2", unit: "count"},
		{name: "count into volume without density", profile: Profile{CanonicalUnit: Milliliter, AvgWeightPerUnitG: nullDec("50")}, qty: "2", unit: "count"},
		{name: "unknown unit token", profile: Profile{CanonicalUnit: Gram}, qty: "2", unit: "handfuls"},
		{name: "container unit", profile: Profile{CanonicalUnit: Each}, qty: "2", unit: "can"},
		{name: "unknown canonical unit", profile: Profile{CanonicalUnit: "bushel"}, qty: "2", unit: "g"},
		{name: "zero quantity", profile: Profile{CanonicalUnit: Gram}, qty: "0", unit: "g"},
		{name: "negative quantity", profile: Profile{CanonicalUnit: Gram}, qty: "-4", unit: "g"},
		{name: "zero density", profile: Profile{CanonicalUnit: Gram, DensityGPerML: nullDec("0")}, qty: "1", unit: "cup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.profile, dec(tt.qty), tt.unit)
			assert.False(t, ok)
			assert.Equal(t, Amount{}, got)
		})
	}
}

func TestNormalize_RepeatedConversionsDoNotDrift(t *testing.T) {
	p := Profile{CanonicalUnit: Milliliter}
	total := decimal.Zero
	for i := 0; i < 1000; i++ {
		got, ok := Normalize(p, dec("0.1"), "tsp")
		require.True(t, ok)
		total = total.Add(got.Quantity)
	}
	assert.True(t, dec("500").Equal(total), "got %s", total)
}

func TestExpress(t *testing.T) {
	milk := Profile{CanonicalUnit: Milliliter}

	t.Run("preferred unit of same kind", func(t *testing.T) {
		got := Express(milk, Amount{Quantity: dec("10"), Unit: "ml"}, "tsp")
		assert.Equal(t, "2", got.Quantity.String())
		assert.Equal(t, "tsp", got.Unit)
	})

	t.Run("preferred unit equal to canonical", func(t *testing.T) {
		got := Express(milk, Amount{Quantity: dec("1500"), Unit: "ml"}, "mls")
		assert.Equal(t, "1500", got.Quantity.String())
		assert.Equal(t, "ml", got.Unit)
	})

	t.Run("inconvertible preferred unit falls back to friendly", func(t *testing.T) {
		got := Express(milk, Amount{Quantity: dec("1500"), Unit: "ml"}, "can")
		assert.Equal(t, "1.5", got.Quantity.String())
		assert.Equal(t, "l", got.Unit)
	})

	t.Run("rounds to two places", func(t *testing.T) {
		got := Express(milk, Amount{Quantity: dec("10"), Unit: "ml"}, "tbsp")
		assert.Equal(t, "0.67", got.Quantity.String())
		assert.Equal(t, "tbsp", got.Unit)
	})
}

func TestSameUnit(t *testing.T) {
	assert.True(t, SameUnit("Cups", "cup"))
	assert.True(t, SameUnit("tablespoons", "TBSP"))
	assert.True(t, SameUnit("cans", "can"))
	assert.True(t, SameUnit("bunches", "bunch"))
	assert.False(t, SameUnit("g", "ml"))
	assert.False(t, SameUnit("", ""))
}

func TestKindText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("Volume")))
	assert.Equal(t, Volume, k)

	b, err := Weight.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "weight", string(b))

	assert.Error(t, k.UnmarshalText([]byte("temperature")))
}
