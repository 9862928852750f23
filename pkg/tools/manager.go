package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmuk/filekeeper/pkg/config"
)

type Manager interface {
	ToolDefs(ctx context.Context) ([]ToolDefinition, error)
	Close() error
}

type localManager struct {
	ft *FileTools
}

func (m *localManager) ToolDefs(context.Context) ([]ToolDefinition, error) {
	return m.ft.ToolDefs(), nil
}

func (m *localManager) Close() error {
	return nil
}

// NewManagers returns the manager of the local file tools, or the manager
// of the configured remote when remote is not empty.
func NewManagers(c *config.Config, remote string) ([]Manager, error) {
	if remote != "" {
		rc, ok := c.Remote(remote)
		if !ok {
			return nil, fmt.Errorf("unknown remote %s", remote)
		}
		return []Manager{NewRemote(rc)}, nil
	}
	ft, err := NewFiles(c)
	if err != nil {
		return nil, err
	}
	return []Manager{&localManager{ft: ft}}, nil
}

// NewRunner collects the tools of every manager.
func NewRunner(ctx context.Context, mgrs []Manager) (*ToolRunner, error) {
	var defs []ToolDefinition
	for _, m := range mgrs {
		d, err := m.ToolDefs(ctx)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d...)
	}
	return NewToolRunner(defs)
}

// CloseAll closes every manager.
func CloseAll(mgrs []Manager) error {
	var allerr error
	for _, m := range mgrs {
		allerr = errors.Join(allerr, m.Close())
	}
	return allerr
}
