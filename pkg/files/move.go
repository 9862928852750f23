package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"
)

var (
	errDestinationExists = errors.New(reasonDestinationExists)
	// errNoReplaceUnsupported is returned by renameNoReplace when the
	// platform or the filesystem cannot rename without replacing.
	errNoReplaceUnsupported = errors.New("rename without replace is not supported")
)

// moveFile moves src to dst without ever replacing an existing dst. It
// returns errDestinationExists when dst is taken.
func moveFile(src, dst string) error {
	err := renameNoReplace(src, dst)
	if errors.Is(err, errNoReplaceUnsupported) {
		if _, statErr := os.Lstat(dst); statErr == nil {
			return errDestinationExists
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return statErr
		}
		err = os.Rename(src, dst)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return errDestinationExists
	}
	if errors.Is(err, syscall.EXDEV) {
		if err := copyExclusive(src, dst); err != nil {
			return fmt.Errorf("copy file across devices: %w", err)
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove source after copy: %w", err)
		}
		return nil
	}
	return err
}

// copyExclusive copies src into a newly created dst, failing if dst exists.
func copyExclusive(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dest, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errDestinationExists
		}
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		os.Remove(dst)
		return fmt.Errorf("copy data: %w", err)
	}
	if err := dest.Sync(); err != nil {
		dest.Close()
		os.Remove(dst)
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close destination: %w", err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
