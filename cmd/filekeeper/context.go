package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/jmuk/filekeeper/pkg/config"
	"github.com/jmuk/filekeeper/pkg/session"
	"github.com/jmuk/filekeeper/pkg/tools"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	filesOnce sync.Once
	files     *tools.FileTools
	filesErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) fileTools() (*tools.FileTools, error) {
	c.filesOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.filesErr = err
			return
		}
		c.files, c.filesErr = tools.NewFiles(cfg)
	})
	return c.files, c.filesErr
}

func (c *commandContext) sessionBaseDir() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.LogDir != "" {
		return cfg.LogDir, nil
	}
	return session.DefaultBaseDir()
}

// newSession starts a logging session for the current directory.
func (c *commandContext) newSession() (*session.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	baseDir, err := c.sessionBaseDir()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	s, err := session.New(baseDir, cwd, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// runTool calls a local tool inside a fresh session and decodes its
// response into out.
func (c *commandContext) runTool(ctx context.Context, name string, in map[string]any, out any) error {
	ft, err := c.fileTools()
	if err != nil {
		return err
	}
	runner, err := tools.NewToolRunner(ft.ToolDefs())
	if err != nil {
		return err
	}
	s, err := c.newSession()
	if err != nil {
		return err
	}
	defer s.Close()
	resp, err := runner.Run(s.With(ctx), name, in)
	if err != nil {
		return err
	}
	return decodeMap(resp, out)
}

func decodeMap(in map[string]any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
