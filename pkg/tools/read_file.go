package tools

import (
	"context"
)

type readFileRequest struct {
	FilePath string `json:"file_path" jsonschema:"the path of the text file to read"`
}

type readFileResponse struct {
	Name      string `json:"name" jsonschema:"the base name of the file"`
	Path      string `json:"path"`
	Content   string `json:"content" jsonschema:"the decoded content"`
	Truncated bool   `json:"truncated" jsonschema:"true when the content was cut at the length limit"`
	Encoding  string `json:"encoding" jsonschema:"the encoding used to decode the file"`
	Size      int64  `json:"size" jsonschema:"the size of the file in bytes"`
}

func (ft *FileTools) readFile(ctx context.Context, req readFileRequest) (readFileResponse, error) {
	logger := getLogger(ctx)
	p, err := ft.resolvePath(req.FilePath)
	if err != nil {
		return readFileResponse{}, err
	}
	logger.Debug("Reading file", "path", p)
	result, err := ft.reader.Read(ctx, p)
	if err != nil {
		return readFileResponse{}, err
	}
	logger.Debug("Read file", "encoding", result.Encoding, "truncated", result.Truncated)
	return readFileResponse{
		Name:      result.Name,
		Path:      result.Path,
		Content:   result.Content,
		Truncated: result.Truncated,
		Encoding:  result.Encoding,
		Size:      result.Size,
	}, nil
}
