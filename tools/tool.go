package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrysync/ingredient"
	"pantrysync/reconcile"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

type Call struct {
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}

// NameResolver maps free-text names to known ingredients.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (ingredient.Match, bool, error)
}

// ListSyncer reconciles a stored list against its pantry.
type ListSyncer interface {
	SyncList(ctx context.Context, listID string) (reconcile.Outcome, error)
}

// Planner appends aggregated plan needs to a stored list.
type Planner interface {
	PlanToList(ctx context.Context, listID string, sources []reconcile.Source) (reconcile.Aggregate, []reconcile.Line, error)
}

// Backend is what the storage layers provide to the tools.
type Backend interface {
	NameResolver
	ListSyncer
	Planner
}

// decodeInput copies a loosely typed tool input into v.
func decodeInput(input map[string]any, v any) error {
	b, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// toMap marshals v -> map[string]any to keep outputs uniform.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

var (
	decimalString = &jsonschema.Schema{Type: "string", Description: "decimal number"}

	lineSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":                 {Type: "string"},
			"ingredient_id":      {Type: "string"},
			"ingredient_name":    {Type: "string"},
			"display_quantity":   decimalString,
			"display_unit":       {Type: "string"},
			"canonical_quantity": decimalString,
			"canonical_unit":     {Type: "string"},
			"note":               {Type: "string"},
		},
		Required: []string{"id"},
	}
)
