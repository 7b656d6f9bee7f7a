package quantity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the physical kind of a unit.
type Kind int

const (
	KindUnknown Kind = iota
	Weight
	Volume
	Count
)

func (k Kind) String() string {
	switch k {
	case Weight:
		return "weight"
	case Volume:
		return "volume"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}

// ParseKind maps "weight", "volume" or "count" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weight":
		return Weight, nil
	case "volume":
		return Volume, nil
	case "count":
		return Count, nil
	}
	return KindUnknown, fmt.Errorf("unknown unit kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return nil, fmt.Errorf("cannot marshal unknown unit kind")
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Base unit symbols, one per kind.
const (
	Gram       = "g"
	Milliliter = "ml"
	Each       = "count"
)

// BaseUnit returns the base unit symbol of a kind.
func BaseUnit(k Kind) string {
	switch k {
	case Weight:
		return Gram
	case Volume:
		return Milliliter
	case Count:
		return Each
	}
	return ""
}

// Unit is a known measuring unit with its factor to the base unit of its kind.
type Unit struct {
	Symbol string
	Kind   Kind
	factor decimal.Decimal
}

// ToBase converts q expressed in u to the base unit of u's kind.
func (u Unit) ToBase(q decimal.Decimal) decimal.Decimal { return q.Mul(u.factor) }

// FromBase converts q expressed in the base unit of u's kind to u.
func (u Unit) FromBase(q decimal.Decimal) decimal.Decimal { return q.Div(u.factor) }

var units = map[string]Unit{}

// aliases maps every accepted spelling to a unit symbol.
var aliases = map[string]string{}

func register(symbol string, kind Kind, factor string, spellings ...string) {
	units[symbol] = Unit{Symbol: symbol, Kind: kind, factor: decimal.RequireFromString(factor)}
	aliases[symbol] = symbol
	for _, s := range spellings {
		aliases[s] = symbol
	}
}

func init() {
	register(Gram, Weight, "1", "gram", "grams", "gr", "gramme", "grammes")
	register("kg", Weight, "1000", "kilogram", "kilograms", "kilo", "kilos", "kgs")
	register("mg", Weight, "0.001", "milligram", "milligrams")
	register("oz", Weight, "28.3495", "ounce", "ounces", "ozs")
	register("lb", Weight, "453.592", "lbs", "pound", "pounds")

	register(Milliliter, Volume, "1", "milliliter", "milliliters", "millilitre", "millilitres", "mls")
	register("l", Volume, "1000", "liter", "liters", "litre", "litres")
	register("tsp", Volume, "5", "teaspoon", "teaspoons", "tsps")
	register("tbsp", Volume, "15", "tablespoon", "tablespoons", "tbsps", "tbs", "tbl")
	register("cup", Volume, "240", "cups", "c")
	register("fl oz", Volume, "29.5735", "floz", "fl. oz", "fluid ounce", "fluid ounces")
	register("pint", Volume, "473.176", "pints", "pt")
	register("quart", Volume, "946.353", "quarts", "qt")
	register("gallon", Volume, "3785.41", "gallons", "gal")

	register(Each, Count, "1", "counts", "ct", "piece", "pieces", "pc", "pcs", "each", "ea", "whole", "item", "items")
}

// containers are package-like words that are kept as their own unit token.
// They have no fixed size, so the normalizer never converts them.
var containers = map[string]bool{
	"can": true, "jar": true, "bottle": true, "package": true, "pkg": true,
	"pack": true, "bag": true, "box": true, "carton": true, "bunch": true,
	"clove": true, "slice": true, "stick": true, "head": true, "loaf": true,
	"sprig": true, "pinch": true, "dash": true, "container": true, "tub": true,
}

// LookupUnit resolves a unit token, in any accepted spelling, to a known unit.
func LookupUnit(token string) (Unit, bool) {
	sym, ok := aliases[cleanToken(token)]
	if !ok {
		return Unit{}, false
	}
	return units[sym], true
}

// CanonicalToken returns the comparable spelling of a unit token: the unit
// symbol for known units, otherwise the lower-cased singular form.
func CanonicalToken(token string) string {
	t := cleanToken(token)
	if sym, ok := aliases[t]; ok {
		return sym
	}
	return singularToken(t)
}

// SameUnit reports whether two unit tokens name the same unit, ignoring case
// and simple plurals.
func SameUnit(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return CanonicalToken(a) == CanonicalToken(b)
}

func cleanToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.TrimRight(t, ".,;:")
	return strings.Join(strings.Fields(t), " ")
}

func singularToken(t string) string {
	switch {
	case len(t) > 3 && strings.HasSuffix(t, "ies"):
		return t[:len(t)-3] + "y"
	case len(t) > 4 && (strings.HasSuffix(t, "ches") || strings.HasSuffix(t, "shes") || strings.HasSuffix(t, "xes")):
		return t[:len(t)-2]
	case len(t) > 2 && strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss"):
		return t[:len(t)-1]
	}
	return t
}

// IsUnitWord reports whether token is a known unit spelling or a container word.
func IsUnitWord(token string) bool {
	t := cleanToken(token)
	if _, ok := aliases[t]; ok {
		return true
	}
	return containers[singularToken(t)]
}
