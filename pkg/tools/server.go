package tools

import (
	"context"
	"encoding/json"

	"github.com/jmuk/filekeeper/pkg/files"
	"github.com/jmuk/filekeeper/pkg/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	serverName    = "filekeeper"
	serverVersion = "v0.1.0"

	RulesURI = "filekeeper://rules"
)

// rulesDocument is the content of the rules resource.
type rulesDocument struct {
	Organize       *orderedmap.OrderedMap[string, []string] `json:"organize"`
	Others         string                                   `json:"others"`
	TextExtensions []string                                 `json:"text_extensions"`
}

// RulesJSON renders the organize rules and the readable extensions.
func (ft *FileTools) RulesJSON() ([]byte, error) {
	return json.MarshalIndent(rulesDocument{
		Organize:       ft.categorizer.Rules(),
		Others:         files.OthersCategory,
		TextExtensions: ft.reader.Extensions(),
	}, "", "  ")
}

func (ft *FileTools) readRules(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := ft.RulesJSON()
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// NewServer returns an MCP server exposing the file tools, the rules
// resource and the prompts. Calls are logged into sess when it is not nil.
func NewServer(ft *FileTools, sess *session.Session) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	for _, d := range ft.ToolDefs() {
		if st, ok := d.(serverTool); ok {
			st.register(s, sess)
		}
	}

	s.AddResource(&mcp.Resource{
		URI:         RulesURI,
		Name:        "rules",
		Description: "The rules to organize files and the text extensions read_file supports.",
		MIMEType:    "application/json",
	}, ft.readRules)

	withSession := func(h mcp.PromptHandler) mcp.PromptHandler {
		return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			if sess != nil {
				ctx = sess.With(ctx)
			}
			return h(ctx, req)
		}
	}
	s.AddPrompt(&mcp.Prompt{
		Name:        "summarize_files",
		Description: "Summarize the files in a directory and suggest how to organize them.",
		Arguments: []*mcp.PromptArgument{{
			Name:        "directory",
			Description: "the directory to summarize",
			Required:    true,
		}},
	}, withSession(ft.summarizeFilesPrompt))
	s.AddPrompt(&mcp.Prompt{
		Name:        "show_file",
		Description: "Display the content of a text file.",
		Arguments: []*mcp.PromptArgument{{
			Name:        "file_path",
			Description: "the file to display",
			Required:    true,
		}},
	}, withSession(ft.showFilePrompt))
	return s
}
