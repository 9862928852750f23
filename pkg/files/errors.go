package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrInvalidDirectory is returned when a directory argument is missing
	// or is not a directory. Nothing has been modified when it is returned.
	ErrInvalidDirectory = errors.New("invalid directory")
	// ErrNotFound is returned when a path vanished or is not a regular file.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedType is returned by the reader for extensions outside
	// of its allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrBusy is returned when another organize run holds the directory.
	ErrBusy = errors.New("directory is being organized")
)

// Skipped describes an entry which a batch operation did not process.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

const (
	reasonDestinationExists = "destination exists"
	reasonVanished          = "vanished"
	reasonBrokenLink        = "broken link"
	reasonSymlink           = "symbolic link"
)

var (
	errBrokenLink = errors.New(reasonBrokenLink)
	errSymlink    = errors.New(reasonSymlink)
)

func invalidDirectory(dir string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDirectory, dir, err)
	}
	return fmt.Errorf("%w: %s is not a directory", ErrInvalidDirectory, dir)
}

func notFound(path string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}

// skipReason turns a per-entry failure into the reason recorded in a batch
// result.
func skipReason(err error) string {
	switch {
	case errors.Is(err, errBrokenLink):
		return reasonBrokenLink
	case errors.Is(err, errSymlink):
		return reasonSymlink
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrNotFound) {
		return reasonVanished
	}
	return err.Error()
}

// checkDir validates that dir exists and is a directory.
func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return invalidDirectory(dir, err)
	}
	if !info.IsDir() {
		return invalidDirectory(dir, nil)
	}
	return nil
}
