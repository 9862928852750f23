package tools

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmuk/filekeeper/pkg/config"
	"github.com/jmuk/filekeeper/pkg/files"
	"github.com/jmuk/filekeeper/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, modify func(c *config.Config)) *ToolRunner {
	t.Helper()
	r, err := NewToolRunner(newTestFiles(t, modify).ToolDefs())
	require.NoError(t, err)
	return r
}

func TestNewToolRunnerDuplicated(t *testing.T) {
	ft := newTestFiles(t, nil)
	defs := append(ft.ToolDefs(), ft.ToolDefs()[0])
	_, err := NewToolRunner(defs)
	assert.ErrorContains(t, err, "duplicated tool name list_files")
}

func TestDefs(t *testing.T) {
	r := newTestRunner(t, nil)
	var got []string
	for _, d := range r.Defs() {
		got = append(got, d.Name())
		assert.NotEmpty(t, d.Description())
		assert.NotNil(t, d.RequestSchema())
		assert.NotNil(t, d.ResponseSchema())
	}
	assert.Equal(t, []string{"list_files", "organize_files", "read_file", "search_files"}, got)
}

func TestRequestSchemaRequired(t *testing.T) {
	ft := newTestFiles(t, nil)
	for _, d := range ft.ToolDefs() {
		if d.Name() == "search_files" {
			assert.ElementsMatch(t, []string{"directory", "query"}, d.RequestSchema().Required)
		}
	}
}

func TestRunUnknown(t *testing.T) {
	r := newTestRunner(t, nil)
	_, err := r.Run(context.Background(), "delete_everything", nil)
	assert.ErrorContains(t, err, "unknown tool")
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.txt", "a.PDF", "sub/c.txt")
	r := newTestRunner(t, nil)

	out, err := r.Run(context.Background(), "list_files", map[string]any{"directory": dir})
	require.NoError(t, err)
	entries := out["files"].([]any)
	assert.Equal(t, []string{"a.PDF", "b.txt"}, names(entries))
	first := entries[0].(map[string]any)
	assert.Equal(t, ".pdf", first["extension"])
	assert.Equal(t, filepath.Join(dir, "a.PDF"), first["path"])
	assert.Equal(t, float64(len("a.PDF")), first["size"])
	assert.NotEmpty(t, first["modified"])
	assert.Empty(t, out["skipped"])
}

func TestListFilesInvalidDirectory(t *testing.T) {
	r := newTestRunner(t, nil)
	_, err := r.Run(context.Background(), "list_files", map[string]any{
		"directory": filepath.Join(t.TempDir(), "missing"),
	})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.ErrorIs(t, err, files.ErrInvalidDirectory)
}

func TestSearchFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "report.pdf", "Report.txt", "nested/annual-report.PDF", "notes.md")
	r := newTestRunner(t, nil)
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		in   map[string]any
		want []string
	}{
		{
			name: "recursive by default",
			in:   map[string]any{"directory": dir, "query": "REPORT"},
			want: []string{"Report.txt", "annual-report.PDF", "report.pdf"},
		},
		{
			name: "extension",
			in:   map[string]any{"directory": dir, "query": "report", "extension": "pdf"},
			want: []string{"annual-report.PDF", "report.pdf"},
		},
		{
			name: "not recursive",
			in:   map[string]any{"directory": dir, "query": "report", "recursive": false},
			want: []string{"Report.txt", "report.pdf"},
		},
		{
			name: "empty query",
			in:   map[string]any{"directory": dir, "query": "", "extension": ".md"},
			want: []string{"notes.md"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Run(ctx, "search_files", tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(out["files"].([]any)))
		})
	}
}

func TestOrganizeFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.jpg", "c.xyz", "Documents/a.pdf")
	r := newTestRunner(t, nil)

	out, err := r.Run(context.Background(), "organize_files", map[string]any{"directory": dir})
	require.NoError(t, err)
	assert.Equal(t, "Moved 2 files, skipped 1", out["message"])
	assert.Len(t, out["moved"], 2)
	skipped := out["skipped"].([]any)
	require.Len(t, skipped, 1)
	assert.Equal(t, "destination exists", skipped[0].(map[string]any)["reason"])

	assert.FileExists(t, filepath.Join(dir, "Images", "b.jpg"))
	assert.FileExists(t, filepath.Join(dir, "Others", "c.xyz"))
	assert.FileExists(t, filepath.Join(dir, "a.pdf"))

	out, err = r.Run(context.Background(), "organize_files", map[string]any{"directory": dir})
	require.NoError(t, err)
	assert.Equal(t, "Moved 0 files, skipped 1", out["message"])
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "long.txt")
	require.NoError(t, os.WriteFile(p, []byte(strings.Repeat("é", 20)), 0644))
	writeFiles(t, dir, "image.png")
	r := newTestRunner(t, func(c *config.Config) {
		c.MaxReadChars = 8
	})
	ctx := context.Background()

	out, err := r.Run(ctx, "read_file", map[string]any{"file_path": p})
	require.NoError(t, err)
	assert.Equal(t, "long.txt", out["name"])
	assert.Equal(t, strings.Repeat("é", 8), out["content"])
	assert.Equal(t, true, out["truncated"])
	assert.Equal(t, files.EncodingUTF8, out["encoding"])

	_, err = r.Run(ctx, "read_file", map[string]any{"file_path": filepath.Join(dir, "image.png")})
	assert.ErrorIs(t, err, files.ErrUnsupportedType)
	_, err = r.Run(ctx, "read_file", map[string]any{"file_path": filepath.Join(dir, "missing.txt")})
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestAllowedDirs(t *testing.T) {
	allowed := t.TempDir()
	outside := t.TempDir()
	writeFiles(t, allowed, "in.txt", "sub/deep.txt")
	writeFiles(t, outside, "out.txt")
	r := newTestRunner(t, func(c *config.Config) {
		c.AllowedDirs = []string{allowed}
	})
	ctx := context.Background()

	_, err := r.Run(ctx, "list_files", map[string]any{"directory": allowed})
	assert.NoError(t, err)
	_, err = r.Run(ctx, "read_file", map[string]any{"file_path": filepath.Join(allowed, "sub", "deep.txt")})
	assert.NoError(t, err)

	for _, tc := range []struct {
		tool string
		in   map[string]any
	}{
		{"list_files", map[string]any{"directory": outside}},
		{"search_files", map[string]any{"directory": filepath.Join(allowed, ".."), "query": ""}},
		{"organize_files", map[string]any{"directory": outside}},
		{"read_file", map[string]any{"file_path": filepath.Join(outside, "out.txt")}},
	} {
		_, err := r.Run(ctx, tc.tool, tc.in)
		assert.ErrorIs(t, err, ErrOutsideAllowedDirs, tc.tool)
	}
	assert.FileExists(t, filepath.Join(outside, "out.txt"))
}

func TestAllowedDirsSymlinkEscape(t *testing.T) {
	allowed := t.TempDir()
	outside := t.TempDir()
	writeFiles(t, outside, "secret.txt")
	require.NoError(t, os.Symlink(outside, filepath.Join(allowed, "link")))
	r := newTestRunner(t, func(c *config.Config) {
		c.AllowedDirs = []string{allowed}
	})

	_, err := r.Run(context.Background(), "read_file", map[string]any{
		"file_path": filepath.Join(allowed, "link", "secret.txt"),
	})
	assert.ErrorIs(t, err, ErrOutsideAllowedDirs)
}

func TestCallsAreLogged(t *testing.T) {
	s, err := session.New(t.TempDir(), "/w", slog.LevelDebug)
	require.NoError(t, err)
	r := newTestRunner(t, nil)

	_, err = r.Run(s.With(context.Background()), "list_files", map[string]any{"directory": t.TempDir()})
	require.NoError(t, err)
	_, err = r.Run(s.With(context.Background()), "list_files", map[string]any{"directory": ""})
	require.Error(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(filepath.Join(s.Path(), "logs", "tools.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"call_id"`)
	assert.Contains(t, string(data), `"tool":"list_files"`)
	assert.Contains(t, string(data), "Tool failed")
}

func TestToolErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := error(&ToolError{base})
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, base)
}
