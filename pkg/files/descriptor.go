// Package files implements the file listing, search, categorization,
// organization, and reading engine behind the filekeeper tools.
package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileDescriptor is a metadata snapshot of a single file taken at read time.
type FileDescriptor struct {
	Path      string
	Name      string
	Extension string
	Size      int64
	Modified  time.Time
}

// Extension returns the lowercase suffix of name after its last dot,
// including the dot. Names without a dot, and names whose only dot is the
// leading one (".bashrc"), have no extension.
func Extension(name string) string {
	name = filepath.Base(name)
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx:])
}

// Describe stats path and returns its descriptor. Symbolic links are
// followed. A path which vanished since it was enumerated is reported as
// ErrNotFound so that batch callers can skip it.
func Describe(path string) (FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileDescriptor{}, notFound(path, err)
		}
		return FileDescriptor{}, err
	}
	return describeInfo(path, info), nil
}

func describeInfo(path string, info fs.FileInfo) FileDescriptor {
	name := filepath.Base(path)
	return FileDescriptor{
		Path:      path,
		Name:      name,
		Extension: Extension(name),
		Size:      info.Size(),
		Modified:  info.ModTime(),
	}
}
