package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/shopspring/decimal"

	"pantrysync/quantity"
)

// AmountParse parses an amount string and optionally converts it.
type AmountParse struct{}

func NewAmountParse() *AmountParse { return &AmountParse{} }

func (t *AmountParse) Name() string  { return "amount_parse" }
func (t *AmountParse) Title() string { return "Parse Amount" }
func (t *AmountParse) Description() string {
	return "Parses a free-text amount such as \"1 1/2 cups\" into a quantity and unit, optionally converted to another unit."
}

func (t *AmountParse) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text":                  {Type: "string"},
			"to_unit":               {Type: "string"},
			"density_g_per_ml":      decimalString,
			"avg_weight_per_unit_g": decimalString,
		},
		Required: []string{"text"},
	}
}

func (t *AmountParse) OutputSchema() *jsonschema.Schema {
	amount := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"quantity": decimalString,
			"unit":     {Type: "string"},
		},
		Required: []string{"quantity", "unit"},
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"parsed":    {Type: "boolean"},
			"amount":    amount,
			"converted": amount,
		},
		Required: []string{"parsed"},
	}
}

type amountParseInput struct {
	Text              string              `json:"text"`
	ToUnit            string              `json:"to_unit"`
	DensityGPerML     decimal.NullDecimal `json:"density_g_per_ml"`
	AvgWeightPerUnitG decimal.NullDecimal `json:"avg_weight_per_unit_g"`
}

type amountParseOutput struct {
	Parsed    bool             `json:"parsed"`
	Amount    *quantity.Amount `json:"amount,omitempty"`
	Converted *quantity.Amount `json:"converted,omitempty"`
}

func (t *AmountParse) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	var in amountParseInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	var out amountParseOutput
	if a, ok := quantity.ParseAmount(in.Text); ok {
		out.Parsed = true
		out.Amount = &a

		if in.ToUnit != "" {
			if _, known := quantity.LookupUnit(in.ToUnit); !known {
				return nil, fmt.Errorf("unknown unit %q", in.ToUnit)
			}
			p := quantity.Profile{
				CanonicalUnit:     in.ToUnit,
				DensityGPerML:     in.DensityGPerML,
				AvgWeightPerUnitG: in.AvgWeightPerUnitG,
			}
			if c, ok := quantity.Normalize(p, a.Quantity, a.Unit); ok {
				out.Converted = &c
			}
		}
	}
	return toMap(out)
}
