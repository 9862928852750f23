package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const truncatedMarker = "... (truncated)"

func textMessage(role mcp.Role, text string) *mcp.PromptMessage {
	return &mcp.PromptMessage{
		Role:    role,
		Content: &mcp.TextContent{Text: text},
	}
}

func summaryMessages(entries []fileEntry) []*mcp.PromptMessage {
	var b strings.Builder
	for _, e := range entries {
		ext := e.Extension
		if ext == "" {
			ext = "no extension"
		}
		fmt.Fprintf(&b, "- %s (%s)\n", e.Name, ext)
	}
	if len(entries) == 0 {
		b.WriteString("(no files)\n")
	}
	return []*mcp.PromptMessage{
		textMessage("user", "Summarize these files and suggest organization:\n"+b.String()),
		textMessage("assistant", "I'll provide a clear summary and suggest how to organize these files."),
	}
}

func contentMessages(resp readFileResponse) []*mcp.PromptMessage {
	content := resp.Content
	if resp.Truncated {
		content += truncatedMarker
	}
	return []*mcp.PromptMessage{
		textMessage("user", fmt.Sprintf("Display the content of %s clearly, summarizing if too long:\n%s", resp.Name, content)),
		textMessage("assistant", fmt.Sprintf("I'll present the content of %s in a readable format, with a summary if needed.", resp.Name)),
	}
}

func errorMessages(err error) []*mcp.PromptMessage {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		err = toolErr.Unwrap()
	}
	return []*mcp.PromptMessage{
		textMessage("user", "Report this error: "+err.Error()),
		textMessage("assistant", "I'll explain the error clearly."),
	}
}

func (ft *FileTools) summarizeFilesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	dir := req.Params.Arguments["directory"]
	ctx = withCallLogger(ctx, "summarize_files")
	resp, err := ft.listFiles(ctx, listFilesRequest{Directory: dir})
	if err != nil {
		return &mcp.GetPromptResult{
			Description: "Error listing " + dir,
			Messages:    errorMessages(err),
		}, nil
	}
	return &mcp.GetPromptResult{
		Description: "Summary of the files in " + dir,
		Messages:    summaryMessages(resp.Files),
	}, nil
}

func (ft *FileTools) showFilePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	p := req.Params.Arguments["file_path"]
	ctx = withCallLogger(ctx, "show_file")
	resp, err := ft.readFile(ctx, readFileRequest{FilePath: p})
	if err != nil {
		return &mcp.GetPromptResult{
			Description: "Error reading " + p,
			Messages:    errorMessages(err),
		}, nil
	}
	return &mcp.GetPromptResult{
		Description: "Content of " + resp.Name,
		Messages:    contentMessages(resp),
	}, nil
}
