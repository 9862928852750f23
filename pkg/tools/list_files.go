package tools

import (
	"context"

	"github.com/jmuk/filekeeper/pkg/files"
)

type listFilesRequest struct {
	Directory string `json:"directory" jsonschema:"the directory to list"`
}

type listFilesResponse struct {
	Files   []fileEntry     `json:"files"`
	Skipped []files.Skipped `json:"skipped"`
}

func (ft *FileTools) listFiles(ctx context.Context, req listFilesRequest) (listFilesResponse, error) {
	logger := getLogger(ctx)
	dir, err := ft.resolvePath(req.Directory)
	if err != nil {
		return listFilesResponse{}, err
	}
	logger.Debug("Listing files", "directory", dir)
	result, err := files.Search(ctx, dir, files.SearchOptions{
		FollowSymlinks: ft.followSymlinks,
	})
	if err != nil {
		return listFilesResponse{}, err
	}
	logger.Debug("Listed files", "number_of_files", len(result.Files), "skipped", len(result.Skipped))
	return listFilesResponse{
		Files:   newFileEntries(result.Files),
		Skipped: nonNilSkipped(result.Skipped),
	}, nil
}
