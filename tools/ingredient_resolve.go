package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrysync/ingredient"
)

type IngredientResolve struct{ resolver NameResolver }

func NewIngredientResolve(resolver NameResolver) *IngredientResolve {
	return &IngredientResolve{resolver: resolver}
}

func (t *IngredientResolve) Name() string  { return "ingredient_resolve" }
func (t *IngredientResolve) Title() string { return "Resolve Ingredient" }
func (t *IngredientResolve) Description() string {
	return "Maps a free-text ingredient name to a known canonical ingredient, reporting which matching rule applied."
}

func (t *IngredientResolve) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {Type: "string"},
		},
		Required: []string{"name"},
	}
}

func (t *IngredientResolve) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"found": {Type: "boolean"},
			"rule": {
				Type: "string",
				Enum: []any{
					string(ingredient.RuleExact),
					string(ingredient.RuleNormalized),
					string(ingredient.RuleSingular),
					string(ingredient.RuleSubstring),
				},
			},
			"ingredient": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"id":                    {Type: "string"},
					"name":                  {Type: "string"},
					"canonical_unit":        {Type: "string"},
					"canonical_unit_type":   {Type: "string"},
					"density_g_per_ml":      decimalString,
					"avg_weight_per_unit_g": decimalString,
				},
				Required: []string{"id", "name", "canonical_unit", "canonical_unit_type"},
			},
		},
		Required: []string{"found"},
	}
}

func (t *IngredientResolve) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	name, _ := input["name"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	m, ok, err := t.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve ingredient: %w", err)
	}

	out := struct {
		Found      bool                   `json:"found"`
		Rule       ingredient.Rule        `json:"rule,omitempty"`
		Ingredient *ingredient.Ingredient `json:"ingredient,omitempty"`
	}{Found: ok}
	if ok {
		out.Rule = m.Rule
		out.Ingredient = &m.Ingredient
	}
	return toMap(out)
}
