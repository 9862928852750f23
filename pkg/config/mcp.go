package config

import (
	"errors"
	"fmt"
	"strings"
)

// RemoteConfig defines a configuration to connect to a MCP server, either
// by spawning Command or through the streamable HTTP Endpoint.
type RemoteConfig struct {
	Name           string            `toml:"name"`
	Command        []string          `toml:"command,omitempty"`
	Endpoint       string            `toml:"endpoint,omitempty"`
	RequestHeaders map[string]string `toml:"request_headers,omitempty"`
}

func (c RemoteConfig) Validate() error {
	if c.Name == "" {
		return errors.New("missing name")
	}
	if len(c.Command) == 0 && c.Endpoint == "" {
		return fmt.Errorf("%s: either command or endpoint is required", c.Name)
	}
	if len(c.Command) > 0 && c.Endpoint != "" {
		return fmt.Errorf("%s: command and endpoint are exclusive", c.Name)
	}
	return nil
}

func (c RemoteConfig) String() string {
	if c.Endpoint != "" {
		return fmt.Sprintf("%s: %s", c.Name, c.Endpoint)
	}
	return fmt.Sprintf("%s: %s", c.Name, strings.Join(c.Command, " "))
}
