package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrysync/reconcile"
)

type PlanToList struct{ planner Planner }

func NewPlanToList(planner Planner) *PlanToList { return &PlanToList{planner: planner} }

func (t *PlanToList) Name() string  { return "plan_to_list" }
func (t *PlanToList) Title() string { return "Add Plan to List" }
func (t *PlanToList) Description() string {
	return "Sums ingredient needs across planned meals per ingredient and appends them to a shopping list. Needs that cannot be measured are added as notes."
}

func (t *PlanToList) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"list_id": {Type: "string"},
			"sources": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"ingredient_id": {Type: "string"},
						"name":          {Type: "string"},
						"amount":        {Type: "string"},
						"quantity":      decimalString,
						"unit":          {Type: "string"},
						"scale":         decimalString,
					},
				},
			},
		},
		Required: []string{"list_id", "sources"},
	}
}

func (t *PlanToList) OutputSchema() *jsonschema.Schema {
	minCount := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"list_id": {Type: "string"},
			"added":   {Type: "array", Items: lineSchema},
			"needs":   {Type: "integer", Minimum: &minCount},
			"skipped": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"name":   {Type: "string"},
						"reason": {Type: "string"},
					},
					Required: []string{"reason"},
				},
			},
		},
		Required: []string{"list_id", "added", "needs", "skipped"},
	}
}

type planToListInput struct {
	ListID  string             `json:"list_id"`
	Sources []reconcile.Source `json:"sources"`
}

type skippedOutput struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (t *PlanToList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	var in planToListInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ListID) == "" {
		return nil, fmt.Errorf("list_id is required")
	}

	agg, lines, err := t.planner.PlanToList(ctx, in.ListID, in.Sources)
	if err != nil {
		return nil, fmt.Errorf("plan to list: %w", err)
	}

	out := struct {
		ListID  string           `json:"list_id"`
		Added   []reconcile.Line `json:"added"`
		Needs   int              `json:"needs"`
		Skipped []skippedOutput  `json:"skipped"`
	}{
		ListID:  in.ListID,
		Added:   lines,
		Needs:   len(agg.Needs),
		Skipped: make([]skippedOutput, 0, len(agg.Skipped)),
	}
	if out.Added == nil {
		out.Added = make([]reconcile.Line, 0)
	}
	for _, s := range agg.Skipped {
		out.Skipped = append(out.Skipped, skippedOutput{Name: s.Source.Name, Reason: s.Reason})
	}
	return toMap(out)
}
