package tools

import (
	"context"
	"fmt"

	"github.com/jmuk/filekeeper/pkg/files"
)

type organizeFilesRequest struct {
	Directory string `json:"directory" jsonschema:"the directory whose files are moved into category folders"`
}

type organizeFilesResponse struct {
	Directory string          `json:"directory"`
	Moved     []files.Move    `json:"moved"`
	Skipped   []files.Skipped `json:"skipped"`
	Message   string          `json:"message"`
}

func organizeMessage(r *files.OrganizeResult) string {
	msg := fmt.Sprintf("Moved %d files", len(r.Moved))
	if len(r.Skipped) > 0 {
		msg += fmt.Sprintf(", skipped %d", len(r.Skipped))
	}
	return msg
}

func (ft *FileTools) organizeFiles(ctx context.Context, req organizeFilesRequest) (organizeFilesResponse, error) {
	logger := getLogger(ctx)
	dir, err := ft.resolvePath(req.Directory)
	if err != nil {
		return organizeFilesResponse{}, err
	}
	logger = logger.With("directory", dir)
	logger.Info("Organizing files")
	result, err := ft.organizer.Organize(ctx, dir)
	if err != nil {
		return organizeFilesResponse{}, err
	}
	for _, m := range result.Moved {
		logger.Debug("Moved", "source", m.Source, "destination", m.Destination)
	}
	for _, s := range result.Skipped {
		logger.Warn("Skipped", "path", s.Path, "reason", s.Reason)
	}
	msg := organizeMessage(result)
	logger.Info(msg)
	return organizeFilesResponse{
		Directory: result.Directory,
		Moved:     result.Moved,
		Skipped:   result.Skipped,
		Message:   msg,
	}, nil
}

// Plan reports what organize_files would do on dir without moving
// anything.
func (ft *FileTools) Plan(ctx context.Context, dir string) (*files.OrganizeResult, error) {
	p, err := ft.resolvePath(dir)
	if err != nil {
		return nil, err
	}
	return ft.organizer.Plan(ctx, p)
}
