package tools

import (
	"context"
	"fmt"
	"sort"
)

// ToolRunner dispatches calls by tool name without going through MCP.
type ToolRunner struct {
	defsMap map[string]ToolDefinition
}

func NewToolRunner(defs []ToolDefinition) (*ToolRunner, error) {
	m := make(map[string]ToolDefinition, len(defs))
	for _, d := range defs {
		if _, ok := m[d.Name()]; ok {
			return nil, fmt.Errorf("duplicated tool name %s", d.Name())
		}
		m[d.Name()] = d
	}
	return &ToolRunner{defsMap: m}, nil
}

// Defs returns the tool definitions sorted by name.
func (r *ToolRunner) Defs() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.defsMap))
	for _, d := range r.defsMap {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name() < defs[j].Name()
	})
	return defs
}

func (r *ToolRunner) Run(ctx context.Context, name string, in map[string]any) (map[string]any, error) {
	p, ok := r.defsMap[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %s", name)
	}
	if in == nil {
		in = map[string]any{}
	}
	return p.process(ctx, in)
}
