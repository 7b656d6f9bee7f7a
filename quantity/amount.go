// Package quantity parses free-text amounts and converts them between units.
//
// All arithmetic is done on exact decimals. Nothing in this package returns an
// error for bad input: a failed parse or conversion is reported with ok=false
// and callers treat it as "no information".
package quantity

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a quantity expressed in a unit token.
type Amount struct {
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

func (a Amount) String() string { return a.Quantity.String() + " " + a.Unit }

var vulgarFractions = strings.NewReplacer(
	"½", " 1/2", "⅓", " 1/3", "⅔", " 2/3", "¼", " 1/4", "¾", " 3/4",
	"⅕", " 1/5", "⅛", " 1/8", "⅜", " 3/8", "⅝", " 5/8", "⅞", " 7/8",
	"⁄", "/",
)

var (
	// leading number, optionally glued to its unit ("200g", "1/2cup")
	leadingNumber = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)(?:/(\d+(?:\.\d+)?))?(.*)$`)
	fraction      = regexp.MustCompile(`^(\d+)/(\d+)$`)
	parenthetical = regexp.MustCompile(`\(([^()]*)\)`)
)

// ParseAmount parses text such as "2 cups", "1/2 tsp", "1 1/2 lb" or
// "3 chicken breasts (1 lb)" into a positive quantity and a unit token.
// Known unit spellings are canonicalized ("tablespoons" -> "tbsp"). With no
// unit word the unit is "count". Malformed input, a zero denominator or a
// non-positive quantity yields ok=false.
func ParseAmount(text string) (Amount, bool) {
	s := strings.ToLower(vulgarFractions.Replace(text))
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, false
	}

	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return Amount{}, false
	}

	qty, err := decimal.NewFromString(m[1])
	if err != nil {
		return Amount{}, false
	}
	if m[2] != "" {
		den, err := decimal.NewFromString(m[2])
		if err != nil || den.IsZero() {
			return Amount{}, false
		}
		qty = qty.Div(den)
	}

	rest := strings.Fields(m[3])

	// text glued to the number must be a unit ("200g"), not "1e3" or "2x"
	if glued := m[3] != "" && strings.TrimLeft(m[3], " \t") == m[3]; glued && !IsUnitWord(rest[0]) {
		return Amount{}, false
	}

	// mixed number: "1 1/2 cups"
	if m[2] == "" && qty.IsInteger() && len(rest) > 0 {
		if f := fraction.FindStringSubmatch(rest[0]); f != nil {
			num, _ := decimal.NewFromString(f[1])
			den, _ := decimal.NewFromString(f[2])
			if den.IsZero() {
				return Amount{}, false
			}
			qty = qty.Add(num.Div(den))
			rest = rest[1:]
		}
	}

	if !qty.IsPositive() {
		return Amount{}, false
	}

	if len(rest) > 0 && strings.ContainsAny(rest[0][:1], "0123456789/.-") {
		// "1/2/3", "2-3 cups", "2 3": not a single amount
		return Amount{}, false
	}

	unit, known := unitFromWords(rest)
	if !known {
		// "3 chicken breasts (1 lb)": trust the measured amount in parentheses
		if p := parenthetical.FindStringSubmatch(s); p != nil {
			if inner, ok := ParseAmount(p[1]); ok && inner.Unit != Each {
				if _, measured := LookupUnit(inner.Unit); measured {
					return inner, true
				}
			}
		}
	}
	return Amount{Quantity: qty, Unit: unit}, true
}

// unitFromWords picks the unit token from the words following the number.
// known is false when the words name the item rather than a unit, in which
// case the unit falls back to "count".
func unitFromWords(words []string) (unit string, known bool) {
	if len(words) == 0 {
		return Each, true
	}

	// two-word spellings first ("fl oz", "fluid ounces")
	if len(words) > 1 {
		if sym, ok := aliases[cleanToken(words[0]+" "+words[1])]; ok {
			return sym, true
		}
	}
	if sym, ok := aliases[cleanToken(words[0])]; ok {
		return sym, true
	}
	if c := singularToken(cleanToken(words[0])); containers[c] {
		return c, true
	}
	return Each, false
}
