package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Move records one file moved (or, for a plan, to be moved) into its
// category folder.
type Move struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Category    string `json:"category"`
}

// OrganizeResult enumerates every file an organize run moved or skipped,
// in directory order.
type OrganizeResult struct {
	Directory string    `json:"directory"`
	Moved     []Move    `json:"moved"`
	Skipped   []Skipped `json:"skipped"`
}

// Organizer moves the immediate files of a directory into per-category
// subfolders.
type Organizer struct {
	categorizer *Categorizer
	lockDir     string
}

// NewOrganizer returns an organizer using c. Lock files serializing runs on
// the same directory are kept in lockDir, which defaults to a directory
// under os.TempDir when empty. They are never placed inside the organized
// directory.
func NewOrganizer(c *Categorizer, lockDir string) *Organizer {
	if lockDir == "" {
		lockDir = filepath.Join(os.TempDir(), "filekeeper-locks")
	}
	return &Organizer{
		categorizer: c,
		lockDir:     lockDir,
	}
}

// Organize moves every regular file directly inside dir into the subfolder
// named after its category, creating the folder when needed. Symbolic
// links are left in place and recorded as skipped. Existing
// destination files are never replaced: the source is left in place and
// recorded as skipped with reason "destination exists". Failures on one
// file are recorded and processing continues with the next.
func (o *Organizer) Organize(ctx context.Context, dir string) (*OrganizeResult, error) {
	if err := checkDir(dir); err != nil {
		return nil, err
	}
	unlock, err := o.lock(dir)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return o.run(ctx, dir, false)
}

// Plan reports what Organize would do on dir without modifying anything.
func (o *Organizer) Plan(ctx context.Context, dir string) (*OrganizeResult, error) {
	if err := checkDir(dir); err != nil {
		return nil, err
	}
	return o.run(ctx, dir, true)
}

func (o *Organizer) lock(dir string) (func(), error) {
	canonical, err := canonicalDir(dir)
	if err != nil {
		return nil, invalidDirectory(dir, err)
	}
	if err := os.MkdirAll(o.lockDir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	h := sha256.Sum256([]byte(canonical))
	fl := flock.New(filepath.Join(o.lockDir, hex.EncodeToString(h[:])+".lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, dir)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (o *Organizer) run(ctx context.Context, dir string, dryRun bool) (*OrganizeResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, invalidDirectory(dir, err)
	}
	result := &OrganizeResult{
		Directory: dir,
		Moved:     []Move{},
		Skipped:   []Skipped{},
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(dir, entry.Name())
		info, err := os.Lstat(src)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{Path: src, Reason: skipReason(err)})
			continue
		}
		// A moved link would still carry its old relative target.
		if info.Mode()&os.ModeSymlink != 0 {
			result.Skipped = append(result.Skipped, Skipped{Path: src, Reason: skipReason(errSymlink)})
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		category := o.categorizer.Category(Extension(entry.Name()))
		move := Move{
			Source:      src,
			Destination: filepath.Join(dir, category, entry.Name()),
			Category:    category,
		}
		if err := o.place(move, dryRun); err != nil {
			result.Skipped = append(result.Skipped, Skipped{Path: src, Reason: skipReason(err)})
			continue
		}
		result.Moved = append(result.Moved, move)
	}
	return result, nil
}

func (o *Organizer) place(m Move, dryRun bool) error {
	if dryRun {
		if _, err := os.Lstat(m.Destination); err == nil {
			return errDestinationExists
		}
		if info, err := os.Stat(filepath.Dir(m.Destination)); err == nil && !info.IsDir() {
			return fmt.Errorf("%s is not a directory", filepath.Dir(m.Destination))
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.Destination), 0755); err != nil {
		return fmt.Errorf("create category folder: %w", err)
	}
	if err := moveFile(m.Source, m.Destination); err != nil {
		if errors.Is(err, errDestinationExists) {
			return errDestinationExists
		}
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}
