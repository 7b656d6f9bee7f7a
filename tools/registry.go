package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a registry with every tool served by backend.
func NewRegistry(backend Backend) *Registry {
	tools := map[string]Tool{}
	for _, t := range []Tool{
		NewAmountParse(),
		NewIngredientResolve(backend),
		NewListSync(backend),
		NewPlanToList(backend),
	} {
		tools[t.Name()] = t
	}

	registry := Registry(tools)
	return &registry
}

// GetTools returns all tools in the registry sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}

// Run executes a call against the named tool.
func (r Registry) Run(ctx context.Context, call Call) (map[string]any, error) {
	tool, err := r.GetTool(call.Name)
	if err != nil {
		return nil, err
	}
	slog.Info("TOOLS: Running", "tool", call.Name, "tool_use_id", call.ToolUseID)
	out, err := tool.Run(ctx, call.Input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call.Name, err)
	}
	return out, nil
}
