package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFiles creates each named file (slash separated, relative to dir)
// with its name as content.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(name), 0644))
	}
}

func paths(fds []FileDescriptor, base string) []string {
	out := make([]string, 0, len(fds))
	for _, fd := range fds {
		rel, err := filepath.Rel(base, fd.Path)
		if err != nil {
			rel = fd.Path
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}
