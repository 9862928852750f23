package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadWritesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.toml")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = os.Stat(p)
	require.NoError(t, err)

	// The written file loads back to the same values.
	reloaded, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, c, reloaded)
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	p, err := DefaultPath()
	require.NoError(t, err)
	_, err = Load("")
	require.NoError(t, err)
	_, err = os.Stat(p)
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
loglevel = "debug"
max_read_chars = 100
text_extensions = [".txt", "log"]
follow_symlinks = false
allowed_dirs = ["/srv/shared"]
listen = "127.0.0.1:8080"

[categories]
".epub" = "Books"
flac = "Music"

[[remote]]
name = "nas"
endpoint = "http://nas.local:8080/mcp"
request_headers = { Authorization = "Bearer token" }

[[remote]]
name = "local"
command = ["filekeeper", "serve"]
`)

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, 100, c.MaxReadChars)
	assert.Equal(t, []string{".txt", "log"}, c.TextExtensions)
	assert.False(t, c.FollowSymlinks)
	assert.Equal(t, []string{"/srv/shared"}, c.AllowedDirs)
	assert.Equal(t, "127.0.0.1:8080", c.Listen)
	assert.Equal(t, map[string]string{".epub": "Books", "flac": "Music"}, c.Categories)
	require.Len(t, c.Remotes, 2)

	nas, ok := c.Remote("nas")
	require.True(t, ok)
	assert.Equal(t, "Bearer token", nas.RequestHeaders["Authorization"])
	assert.Equal(t, "nas: http://nas.local:8080/mcp", nas.String())
	local, ok := c.Remote("local")
	require.True(t, ok)
	assert.Equal(t, "local: filekeeper serve", local.String())
	_, ok = c.Remote("missing")
	assert.False(t, ok)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	c, err := Load(writeConfig(t, `max_read_chars = 42`))
	require.NoError(t, err)
	assert.Equal(t, 42, c.MaxReadChars)
	assert.True(t, c.FollowSymlinks)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
	assert.Equal(t, Default().TextExtensions, c.TextExtensions)
}

func TestLoadErrors(t *testing.T) {
	for name, content := range map[string]string{
		"syntax":            `max_read_chars = `,
		"unknown key":       `max_chars = 10`,
		"negative length":   `max_read_chars = -1`,
		"remap builtin":     "[categories]\n\".jpg\" = \"Documents\"",
		"relative allowed":  `allowed_dirs = ["relative/dir"]`,
		"remote no target":  "[[remote]]\nname = \"x\"",
		"remote both":       "[[remote]]\nname = \"x\"\ncommand = [\"a\"]\nendpoint = \"http://x\"",
		"remote duplicated": "[[remote]]\nname = \"x\"\ncommand = [\"a\"]\n[[remote]]\nname = \"x\"\ncommand = [\"b\"]",
		"bad level":         `loglevel = "loud"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
