package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jmuk/filekeeper/pkg/files"
)

const (
	configDirName  = "filekeeper"
	configFileName = "config.toml"
)

type Config struct {
	LogLevel slog.Level `toml:"loglevel"`
	// LogDir holds the session directories. Defaults to the user cache
	// directory.
	LogDir string `toml:"log_dir,omitempty"`

	MaxReadChars   int      `toml:"max_read_chars"`
	TextExtensions []string `toml:"text_extensions"`
	FollowSymlinks bool     `toml:"follow_symlinks"`
	// AllowedDirs restricts every tool path to these directories when set.
	AllowedDirs []string `toml:"allowed_dirs,omitempty"`
	LockDir     string   `toml:"lock_dir,omitempty"`

	// Listen is the address of the streamable HTTP transport. The server
	// uses stdio when it is empty.
	Listen string `toml:"listen,omitempty"`

	// Categories adds extension to category rules on top of the built-in
	// table.
	Categories map[string]string `toml:"categories,omitempty"`

	Remotes []RemoteConfig `toml:"remote,omitempty"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		LogLevel:       slog.LevelInfo,
		MaxReadChars:   files.DefaultMaxChars,
		TextExtensions: append([]string(nil), files.DefaultTextExtensions...),
		FollowSymlinks: true,
	}
}

// Validate checks values that TOML decoding cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxReadChars <= 0 {
		errs = append(errs, fmt.Errorf("max_read_chars: must be positive, got %d", c.MaxReadChars))
	}
	for i, ext := range c.TextExtensions {
		if files.NormalizeExtension(ext) == "" {
			errs = append(errs, fmt.Errorf("text_extensions[%d]: empty extension", i))
		}
	}
	if _, err := files.NewCategorizer(c.Categories); err != nil {
		errs = append(errs, fmt.Errorf("categories: %w", err))
	}
	for i, dir := range c.AllowedDirs {
		if !filepath.IsAbs(dir) {
			errs = append(errs, fmt.Errorf("allowed_dirs[%d]: %s is not absolute", i, dir))
		}
	}
	names := map[string]bool{}
	for i, r := range c.Remotes {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("remote[%d]: %w", i, err))
		}
		if names[r.Name] {
			errs = append(errs, fmt.Errorf("remote[%d]: duplicated name %s", i, r.Name))
		}
		names[r.Name] = true
	}
	return errors.Join(errs...)
}

// Remote returns the remote named name.
func (c *Config) Remote(name string) (RemoteConfig, bool) {
	for _, r := range c.Remotes {
		if r.Name == name {
			return r, true
		}
	}
	return RemoteConfig{}, false
}

// DefaultPath returns the config file location under the user config
// directory.
func DefaultPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, configDirName, configFileName), nil
}

// Load reads the config file at path, or at DefaultPath when path is
// empty. A missing file is created with the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	config := Default()
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		data, err := toml.Marshal(config)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, err
		}
		return config, nil
	}

	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}
