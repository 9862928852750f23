package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmuk/filekeeper/pkg/config"
	"github.com/jmuk/filekeeper/pkg/files"
)

// FileTools serves the file manager tools on top of the files package.
type FileTools struct {
	categorizer    *files.Categorizer
	organizer      *files.Organizer
	reader         *files.Reader
	followSymlinks bool
	allowedDirs    []string
}

func NewFiles(c *config.Config) (*FileTools, error) {
	categorizer, err := files.NewCategorizer(c.Categories)
	if err != nil {
		return nil, err
	}
	allowed := make([]string, 0, len(c.AllowedDirs))
	for _, dir := range c.AllowedDirs {
		allowed = append(allowed, canonical(dir))
	}
	return &FileTools{
		categorizer:    categorizer,
		organizer:      files.NewOrganizer(categorizer, c.LockDir),
		reader:         files.NewReader(c.MaxReadChars, c.TextExtensions),
		followSymlinks: c.FollowSymlinks,
		allowedDirs:    allowed,
	}, nil
}

func (ft *FileTools) Categorizer() *files.Categorizer {
	return ft.categorizer
}

func (ft *FileTools) Reader() *files.Reader {
	return ft.reader
}

func (ft *FileTools) ToolDefs() []ToolDefinition {
	return []ToolDefinition{
		&toolDefinition[listFilesRequest, listFilesResponse]{
			name:        "list_files",
			title:       "List files",
			description: "List the files directly inside a directory with their size and modification time.",
			readOnly:    true,
			proc:        ft.listFiles,
		},
		&toolDefinition[searchFilesRequest, searchFilesResponse]{
			name:        "search_files",
			title:       "Search files",
			description: "Search files whose name contains the query, optionally restricted to one extension. Subdirectories are searched unless recursive is false.",
			readOnly:    true,
			proc:        ft.searchFiles,
		},
		&toolDefinition[organizeFilesRequest, organizeFilesResponse]{
			name:        "organize_files",
			title:       "Organize files",
			description: fmt.Sprintf("Move the files directly inside a directory into subfolders named after their category (%s). Existing files are never overwritten.", strings.Join(ft.categorizer.Categories(), ", ")),
			idempotent:  true,
			proc:        ft.organizeFiles,
		},
		&toolDefinition[readFileRequest, readFileResponse]{
			name:        "read_file",
			title:       "Read file",
			description: fmt.Sprintf("Read a text file. Supported types: %s. Long content is truncated.", strings.Join(ft.reader.Extensions(), ", ")),
			readOnly:    true,
			proc:        ft.readFile,
		},
	}
}

// fileEntry is the wire form of files.FileDescriptor.
type fileEntry struct {
	Name      string `json:"name" jsonschema:"the base name of the file"`
	Path      string `json:"path" jsonschema:"the absolute path of the file"`
	Extension string `json:"extension" jsonschema:"the lower-cased extension including the dot or empty"`
	Size      int64  `json:"size" jsonschema:"the size in bytes"`
	Modified  string `json:"modified" jsonschema:"the modification time in RFC 3339"`
}

func newFileEntries(fds []files.FileDescriptor) []fileEntry {
	entries := make([]fileEntry, 0, len(fds))
	for _, fd := range fds {
		entries = append(entries, fileEntry{
			Name:      fd.Name,
			Path:      fd.Path,
			Extension: fd.Extension,
			Size:      fd.Size,
			Modified:  fd.Modified.Format(time.RFC3339),
		})
	}
	return entries
}

func nonNilSkipped(s []files.Skipped) []files.Skipped {
	if s == nil {
		return []files.Skipped{}
	}
	return s
}

func canonical(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	// The path may not exist; its parent still needs resolving.
	if parent, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		return filepath.Join(parent, filepath.Base(p))
	}
	return p
}

// resolvePath returns the absolute form of p, checking it against the
// allowed directories. Symbolic links are resolved for the check only so
// that errors keep mentioning the path the caller passed.
func (ft *FileTools) resolvePath(p string) (string, error) {
	if p == "" {
		return "", errors.New("path is required")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if len(ft.allowedDirs) == 0 {
		return abs, nil
	}
	resolved := canonical(abs)
	for _, dir := range ft.allowedDirs {
		rel, err := filepath.Rel(dir, resolved)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%s: %w", p, ErrOutsideAllowedDirs)
}
