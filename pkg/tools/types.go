package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/jmuk/filekeeper/pkg/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ToolDefinition interface {
	Name() string
	Description() string
	RequestSchema() *jsonschema.Schema
	ResponseSchema() *jsonschema.Schema
	process(ctx context.Context, in map[string]any) (map[string]any, error)
}

// serverTool is a ToolDefinition that can be served by an MCP server.
type serverTool interface {
	ToolDefinition
	register(s *mcp.Server, sess *session.Session)
}

type toolDefinition[Req any, Resp any] struct {
	name        string
	title       string
	description string
	readOnly    bool
	idempotent  bool
	proc        func(ctx context.Context, req Req) (Resp, error)
}

func (d *toolDefinition[Req, Resp]) Name() string {
	return d.name
}

func (d *toolDefinition[Req, Resp]) Description() string {
	return d.description
}

func (d *toolDefinition[Req, Resp]) RequestSchema() *jsonschema.Schema {
	var t Req
	return (&jsonschema.Reflector{
		DoNotReference: true,
	}).Reflect(&t)
}

func (d *toolDefinition[Req, Resp]) ResponseSchema() *jsonschema.Schema {
	var t Resp
	return (&jsonschema.Reflector{
		DoNotReference: true,
	}).Reflect(&t)
}

func (d *toolDefinition[Req, Resp]) annotations() *mcp.ToolAnnotations {
	destructive := false
	openWorld := false
	return &mcp.ToolAnnotations{
		Title:           d.title,
		ReadOnlyHint:    d.readOnly,
		IdempotentHint:  d.idempotent || d.readOnly,
		DestructiveHint: &destructive,
		OpenWorldHint:   &openWorld,
	}
}

func (d *toolDefinition[Req, Resp]) call(ctx context.Context, req Req) (Resp, error) {
	ctx = withCallLogger(ctx, d.name)
	logger := getLogger(ctx)
	logger.Debug("Tool call", "request", req)
	resp, err := d.proc(ctx, req)
	if err != nil {
		logger.Error("Tool failed", "error", err)
		return resp, &ToolError{err}
	}
	logger.Debug("Tool done")
	return resp, nil
}

func (d *toolDefinition[Req, Resp]) register(s *mcp.Server, sess *session.Session) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        d.name,
		Title:       d.title,
		Description: d.description,
		Annotations: d.annotations(),
	}, func(ctx context.Context, _ *mcp.CallToolRequest, req Req) (*mcp.CallToolResult, Resp, error) {
		if sess != nil {
			ctx = sess.With(ctx)
		}
		resp, err := d.call(ctx, req)
		return nil, resp, err
	})
}

func (d *toolDefinition[Req, Resp]) process(ctx context.Context, in map[string]any) (map[string]any, error) {
	// Might not be ideal as it copies the data.
	jsonIn, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var req Req
	if err := json.Unmarshal(jsonIn, &req); err != nil {
		return nil, &ToolError{err}
	}
	resp, err := d.call(ctx, req)
	if err != nil {
		return nil, err
	}
	jsonResp, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(jsonResp, &out); err != nil {
		return nil, err
	}
	return out, nil
}
