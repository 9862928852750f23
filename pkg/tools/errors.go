package tools

import "errors"

// ErrOutsideAllowedDirs is returned when a tool path is not within any of
// the configured allowed directories.
var ErrOutsideAllowedDirs = errors.New("path is outside of the allowed directories")

// ToolError reports that the tool itself failed, as opposed to the
// transport or the argument decoding around it.
type ToolError struct {
	err error
}

func (e *ToolError) Error() string {
	return e.err.Error()
}

func (e *ToolError) Unwrap() error {
	return e.err
}
