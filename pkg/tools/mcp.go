package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/exec"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/jmuk/filekeeper/pkg/config"
	"github.com/jmuk/filekeeper/pkg/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// dialer creates a fresh transport for each connection attempt.
type dialer func() mcp.Transport

func commandDialer(command []string) dialer {
	return func() mcp.Transport {
		return &mcp.CommandTransport{
			Command: exec.Command(command[0], command[1:]...),
		}
	}
}

func httpDialer(endpoint string, headers map[string]string) dialer {
	return func() mcp.Transport {
		t := &mcp.StreamableClientTransport{Endpoint: endpoint}
		if len(headers) > 0 {
			h := http.Header{}
			for k, v := range headers {
				h.Set(k, v)
			}
			t.HTTPClient = &http.Client{
				Transport: &headerTransport{header: h, base: http.DefaultTransport},
			}
		}
		return t
	}
}

// headerTransport sets configured headers the request does not carry yet.
type headerTransport struct {
	header http.Header
	base   http.RoundTripper
}

func (ht *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range ht.header {
		if _, ok := r.Header[k]; !ok {
			r.Header[k] = v
		}
	}
	return ht.base.RoundTrip(r)
}

// Remote exposes the tools of another MCP server to the ToolRunner. The
// connection is opened on first use and shared by concurrent calls.
type Remote struct {
	name   string
	client *mcp.Client
	dial   dialer

	mu   sync.Mutex
	conn *mcp.ClientSession
}

func newRemote(name string, dial dialer) *Remote {
	r := &Remote{
		name: name,
		dial: dial,
	}
	r.client = mcp.NewClient(
		&mcp.Implementation{Name: serverName, Version: serverVersion},
		&mcp.ClientOptions{LoggingMessageHandler: r.forwardLog},
	)
	return r
}

// NewRemote returns the client for a configured remote server.
func NewRemote(c config.RemoteConfig) *Remote {
	if c.Endpoint != "" {
		return newRemote(c.Name, httpDialer(c.Endpoint, c.RequestHeaders))
	}
	return newRemote(c.Name, commandDialer(c.Command))
}

func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}

func remoteLevel(l mcp.LoggingLevel) slog.Level {
	switch strings.ToLower(string(l)) {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error", "critical", "alert", "emergency":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// forwardLog writes log notifications of the remote server into the
// session log "remote-<name>[-<logger>]".
func (r *Remote) forwardLog(ctx context.Context, req *mcp.LoggingMessageRequest) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return
	}
	p := req.Params
	name := "remote-" + r.name
	if p.Logger != "" && !strings.Contains(p.Logger, "/") {
		name += "-" + p.Logger
	}
	logger, err := s.GetLogger(name)
	if err != nil {
		log.Printf("Failed to get the logger: %v", err)
		return
	}
	logger.Log(ctx, remoteLevel(p.Level), "Remote log", "data", p.Data)
}

// traceName is the session file receiving the raw protocol trace.
func (r *Remote) traceName() string {
	name := strings.ReplaceAll(r.name, "/", "_")
	if len(name) > 64 {
		name = name[:64]
	}
	return fmt.Sprintf("remote-%s-trace.txt", name)
}

func (r *Remote) session(ctx context.Context) (*mcp.ClientSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		return r.conn, nil
	}
	transport := r.dial()
	if s, ok := session.FromContext(ctx); ok {
		trace, err := s.GetLogFile(r.traceName())
		if err != nil {
			return nil, err
		}
		transport = &mcp.LoggingTransport{Transport: transport, Writer: trace}
	}
	conn, err := r.client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", r.name, err)
	}
	r.conn = conn
	return conn, nil
}

func resultText(result *mcp.CallToolResult) string {
	var b strings.Builder
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// decodeResult prefers structured content, then text holding a JSON
// object, and wraps anything else as {"content": text}.
func decodeResult(result *mcp.CallToolResult) (map[string]any, bool) {
	out := map[string]any{}
	if result.StructuredContent != nil {
		if encoded, err := json.Marshal(result.StructuredContent); err == nil {
			if err := json.Unmarshal(encoded, &out); err == nil {
				return out, true
			}
		}
	}
	text := resultText(result)
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, true
	}
	return map[string]any{"content": text}, false
}

func (r *Remote) call(ctx context.Context, tool string, in map[string]any) (map[string]any, error) {
	logger := getLogger(ctx).With("remote", r.name)
	conn, err := r.session(ctx)
	if err != nil {
		logger.Error("Failed to connect", "error", err)
		return nil, err
	}
	result, err := conn.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: in})
	if err != nil {
		logger.Error("Failed to call", "error", err)
		return nil, err
	}
	if result.IsError {
		return nil, &ToolError{errors.New(resultText(result))}
	}
	out, structured := decodeResult(result)
	if !structured {
		logger.Debug("Unstructured result", "content", out["content"])
	}
	return out, nil
}

// toSchema converts a schema of the MCP SDK into the form served by
// `tools --schema`. A nil input stays nil.
func toSchema(v any) (*jsonschema.Schema, error) {
	if v == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(encoded) == "null" {
		return nil, nil
	}
	s := &jsonschema.Schema{}
	if err := json.Unmarshal(encoded, s); err != nil {
		return nil, err
	}
	return s, nil
}

type remoteTool struct {
	name        string
	description string
	request     *jsonschema.Schema
	response    *jsonschema.Schema
	remote      *Remote
}

func (rt *remoteTool) Name() string                       { return rt.name }
func (rt *remoteTool) Description() string                { return rt.description }
func (rt *remoteTool) RequestSchema() *jsonschema.Schema  { return rt.request }
func (rt *remoteTool) ResponseSchema() *jsonschema.Schema { return rt.response }

func (rt *remoteTool) process(ctx context.Context, in map[string]any) (map[string]any, error) {
	return rt.remote.call(withCallLogger(ctx, rt.name), rt.name, in)
}

func (r *Remote) newRemoteTool(t *mcp.Tool) (*remoteTool, error) {
	request, err := toSchema(t.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("input schema: %w", err)
	}
	response, err := toSchema(t.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("output schema: %w", err)
	}
	if request == nil {
		request = &jsonschema.Schema{Type: "object"}
	}
	return &remoteTool{
		name:        t.Name,
		description: t.Description,
		request:     request,
		response:    response,
		remote:      r,
	}, nil
}

// ToolDefs lists every tool of the remote server, following pagination.
func (r *Remote) ToolDefs(ctx context.Context) ([]ToolDefinition, error) {
	conn, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	var defs []ToolDefinition
	params := &mcp.ListToolsParams{}
	for {
		page, err := conn.ListTools(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, t := range page.Tools {
			def, err := r.newRemoteTool(t)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", t.Name, err)
			}
			defs = append(defs, def)
		}
		if page.NextCursor == "" {
			return defs, nil
		}
		params = &mcp.ListToolsParams{Cursor: page.NextCursor}
	}
}
