package tools

import (
	"context"

	"github.com/jmuk/filekeeper/pkg/files"
)

type searchFilesRequest struct {
	Directory string `json:"directory" jsonschema:"the directory to search from"`
	Query     string `json:"query" jsonschema:"case-insensitive substring of the file name; empty matches every file"`
	Extension string `json:"extension,omitempty" jsonschema:"only match files with this extension such as .pdf"`
	Recursive *bool  `json:"recursive,omitempty" jsonschema:"search subdirectories too; defaults to true"`
}

type searchFilesResponse struct {
	Files   []fileEntry     `json:"files"`
	Skipped []files.Skipped `json:"skipped"`
}

func (ft *FileTools) searchFiles(ctx context.Context, req searchFilesRequest) (searchFilesResponse, error) {
	logger := getLogger(ctx)
	dir, err := ft.resolvePath(req.Directory)
	if err != nil {
		return searchFilesResponse{}, err
	}
	recursive := true
	if req.Recursive != nil {
		recursive = *req.Recursive
	}
	logger = logger.With("directory", dir, "query", req.Query, "extension", req.Extension, "recursive", recursive)
	logger.Debug("Searching files")
	result, err := files.Search(ctx, dir, files.SearchOptions{
		Query:          req.Query,
		Extension:      req.Extension,
		Recursive:      recursive,
		FollowSymlinks: ft.followSymlinks,
	})
	if err != nil {
		return searchFilesResponse{}, err
	}
	logger.Debug("Matched files", "number_of_files", len(result.Files), "skipped", len(result.Skipped))
	return searchFilesResponse{
		Files:   newFileEntries(result.Files),
		Skipped: nonNilSkipped(result.Skipped),
	}, nil
}
