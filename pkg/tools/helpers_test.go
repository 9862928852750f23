package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmuk/filekeeper/pkg/config"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(name), 0644))
	}
}

func newTestFiles(t *testing.T, modify func(c *config.Config)) *FileTools {
	t.Helper()
	c := config.Default()
	c.LockDir = t.TempDir()
	if modify != nil {
		modify(c)
	}
	ft, err := NewFiles(c)
	require.NoError(t, err)
	return ft
}

func names(entries []any) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.(map[string]any)["name"].(string))
	}
	return out
}
