package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrysync/reconcile"
)

type ListSync struct{ syncer ListSyncer }

func NewListSync(syncer ListSyncer) *ListSync { return &ListSync{syncer: syncer} }

func (t *ListSync) Name() string  { return "list_sync" }
func (t *ListSync) Title() string { return "Sync List with Pantry" }
func (t *ListSync) Description() string {
	return "Subtracts pantry stock from a shopping list: covered lines are removed, partly covered ones reduced. Returns what is still needed."
}

func (t *ListSync) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"list_id": {Type: "string"},
		},
		Required: []string{"list_id"},
	}
}

func (t *ListSync) OutputSchema() *jsonschema.Schema {
	minCount := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"list_id":       {Type: "string"},
			"scope":         {Type: "string"},
			"summary":       {Type: "string"},
			"lines_removed": {Type: "integer", Minimum: &minCount},
			"lines_updated": {Type: "integer", Minimum: &minCount},
			"remainder":     {Type: "array", Items: lineSchema},
			"decisions": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"line_id":       {Type: "string"},
						"ingredient_id": {Type: "string"},
						"action":        {Type: "string"},
						"upgraded":      {Type: "boolean"},
						"detail":        {Type: "string"},
					},
					Required: []string{"line_id", "action"},
				},
			},
		},
		Required: []string{"list_id", "lines_removed", "lines_updated", "remainder"},
	}
}

type listSyncOutput struct {
	ListID    string               `json:"list_id"`
	Scope     string               `json:"scope"`
	Summary   string               `json:"summary"`
	Decisions []reconcile.Decision `json:"decisions"`
	reconcile.Result
}

func (t *ListSync) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	listID, _ := input["list_id"].(string)
	if strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("list_id is required")
	}

	out, err := t.syncer.SyncList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("sync list: %w", err)
	}

	res := listSyncOutput{
		ListID:    listID,
		Scope:     out.Scope.String(),
		Summary:   out.Summary(listID).String(),
		Decisions: out.Decisions,
		Result:    out.Result,
	}
	if res.Decisions == nil {
		res.Decisions = make([]reconcile.Decision, 0)
	}
	if res.Remainder == nil {
		res.Remainder = make([]reconcile.Line, 0)
	}
	return toMap(res)
}
