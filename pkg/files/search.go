package files

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SearchOptions controls Search. The zero value lists the immediate files
// of the directory.
type SearchOptions struct {
	// Query is matched case-insensitively as a substring of file names.
	// An empty query matches every file.
	Query string
	// Extension restricts results to one extension. "pdf" and ".PDF" are
	// equivalent. Empty means no restriction.
	Extension string
	// Recursive descends into subdirectories.
	Recursive bool
	// FollowSymlinks descends into symbolic links to directories. Each
	// directory is visited at most once by its canonical path, so cyclic
	// links terminate.
	FollowSymlinks bool
}

// SearchResult holds the matched files sorted by path and the entries the
// walk could not inspect.
type SearchResult struct {
	Files   []FileDescriptor
	Skipped []Skipped
}

type searcher struct {
	opts    SearchOptions
	query   string
	ext     string
	visited map[string]struct{}
	result  *SearchResult
}

// Search walks dir and returns the files matching opts. The directory must
// exist, otherwise the error wraps ErrInvalidDirectory. Failures on
// individual entries are recorded in SearchResult.Skipped and never abort
// the walk.
func Search(ctx context.Context, dir string, opts SearchOptions) (*SearchResult, error) {
	if err := checkDir(dir); err != nil {
		return nil, err
	}
	s := &searcher{
		opts:    opts,
		query:   strings.ToLower(opts.Query),
		ext:     NormalizeExtension(opts.Extension),
		visited: map[string]struct{}{},
		result:  &SearchResult{},
	}
	if err := s.walk(ctx, dir); err != nil {
		return nil, err
	}
	sort.Slice(s.result.Files, func(i, j int) bool {
		return s.result.Files[i].Path < s.result.Files[j].Path
	})
	return s.result, nil
}

// List returns the immediate files of dir.
func List(ctx context.Context, dir string) (*SearchResult, error) {
	return Search(ctx, dir, SearchOptions{})
}

func (s *searcher) skip(path string, err error) {
	s.result.Skipped = append(s.result.Skipped, Skipped{Path: path, Reason: skipReason(err)})
}

func (s *searcher) walk(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	canonical, err := canonicalDir(dir)
	if err != nil {
		s.skip(dir, err)
		return nil
	}
	if _, ok := s.visited[canonical]; ok {
		return nil
	}
	s.visited[canonical] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.skip(dir, err)
		return nil
	}
	// os.ReadDir sorts by file name, so the walk order is deterministic.
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()
		var info fs.FileInfo
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err = os.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					err = errBrokenLink
				}
				s.skip(path, err)
				continue
			}
			isDir = info.IsDir()
			if isDir && !s.opts.FollowSymlinks {
				continue
			}
		}
		if isDir {
			if s.opts.Recursive {
				if err := s.walk(ctx, path); err != nil {
					return err
				}
			}
			continue
		}
		if !s.matches(entry.Name()) {
			continue
		}
		if info == nil {
			info, err = entry.Info()
			if err != nil {
				s.skip(path, err)
				continue
			}
		}
		if !info.Mode().IsRegular() {
			continue
		}
		s.result.Files = append(s.result.Files, describeInfo(path, info))
	}
	return nil
}

// canonicalDir returns the absolute, link-free form of dir. Relative roots
// and absolute link targets must map to the same key.
func canonicalDir(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

func (s *searcher) matches(name string) bool {
	if s.query != "" && !strings.Contains(strings.ToLower(name), s.query) {
		return false
	}
	if s.ext != "" && Extension(name) != s.ext {
		return false
	}
	return true
}
