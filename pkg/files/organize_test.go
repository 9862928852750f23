package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrganizer(t *testing.T) *Organizer {
	t.Helper()
	return NewOrganizer(MustNewCategorizer(), t.TempDir())
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestOrganizeScenario(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.jpg", "c.xyz")

	res, err := newTestOrganizer(t).Organize(context.Background(), dir)
	require.NoError(t, err)

	for _, p := range []string{"Documents/a.pdf", "Images/b.jpg", "Others/c.xyz"} {
		assert.True(t, exists(filepath.Join(dir, p)), p)
	}
	for _, p := range []string{"a.pdf", "b.jpg", "c.xyz"} {
		assert.False(t, exists(filepath.Join(dir, p)), p)
	}
	assert.Equal(t, []Move{
		{Source: filepath.Join(dir, "a.pdf"), Destination: filepath.Join(dir, "Documents", "a.pdf"), Category: "Documents"},
		{Source: filepath.Join(dir, "b.jpg"), Destination: filepath.Join(dir, "Images", "b.jpg"), Category: "Images"},
		{Source: filepath.Join(dir, "c.xyz"), Destination: filepath.Join(dir, "Others", "c.xyz"), Category: OthersCategory},
	}, res.Moved)
	assert.Empty(t, res.Skipped)

	data, err := os.ReadFile(filepath.Join(dir, "Documents", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", string(data))
}

func TestOrganizeDestinationExists(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "Documents/a.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Documents", "a.pdf"), []byte("existing"), 0644))

	res, err := newTestOrganizer(t).Organize(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, exists(filepath.Join(dir, "a.pdf")))
	data, err := os.ReadFile(filepath.Join(dir, "Documents", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
	assert.Empty(t, res.Moved)
	assert.Equal(t, []Skipped{{Path: filepath.Join(dir, "a.pdf"), Reason: "destination exists"}}, res.Skipped)
}

func TestOrganizeLeavesSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "keep/z.csv")
	link := filepath.Join(dir, "a.txt")
	require.NoError(t, os.Symlink(filepath.Join("keep", "z.csv"), link))
	o := newTestOrganizer(t)

	plan, err := o.Plan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []Skipped{{Path: link, Reason: "symbolic link"}}, plan.Skipped)

	res, err := o.Organize(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, res.Moved, 1)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), res.Moved[0].Source)
	assert.Equal(t, []Skipped{{Path: link, Reason: "symbolic link"}}, res.Skipped)

	data, err := os.ReadFile(link)
	require.NoError(t, err)
	assert.Equal(t, "keep/z.csv", string(data))
	assert.False(t, exists(filepath.Join(dir, "Documents", "a.txt")))
}

func TestOrganizeIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.PNG", "c.mp3", "d.mkv", "e", "keep/inner.jpg")
	o := newTestOrganizer(t)

	first, err := o.Organize(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, first.Moved, 5)

	second, err := o.Organize(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, second.Moved)
	assert.Empty(t, second.Skipped)

	// Subdirectories are neither descended into nor moved.
	assert.True(t, exists(filepath.Join(dir, "keep", "inner.jpg")))
}

func TestOrganizeImages(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.jpg", "b.PNG", "c.gif", "d.JPEG"}
	writeFiles(t, dir, names...)

	_, err := newTestOrganizer(t).Organize(context.Background(), dir)
	require.NoError(t, err)
	for _, name := range names {
		assert.True(t, exists(filepath.Join(dir, "Images", name)), name)
	}
}

func TestOrganizeInvalidDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf")
	o := newTestOrganizer(t)

	_, err := o.Organize(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrInvalidDirectory)
	_, err = o.Organize(context.Background(), filepath.Join(dir, "a.pdf"))
	assert.ErrorIs(t, err, ErrInvalidDirectory)
	assert.True(t, exists(filepath.Join(dir, "a.pdf")))
}

func TestOrganizeContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	// A plain file named like a category folder makes that folder
	// impossible to create.
	writeFiles(t, dir, "Others", "a.xyz", "b.pdf")

	res, err := newTestOrganizer(t).Organize(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, exists(filepath.Join(dir, "a.xyz")))
	assert.True(t, exists(filepath.Join(dir, "Documents", "b.pdf")))
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, filepath.Join(dir, "Others"), res.Skipped[0].Path)
	assert.Equal(t, filepath.Join(dir, "a.xyz"), res.Skipped[1].Path)
	assert.Contains(t, res.Skipped[1].Reason, "create category folder")
	require.Len(t, res.Moved, 1)
	assert.Equal(t, "Documents", res.Moved[0].Category)
}

func TestOrganizeBusy(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf")
	lockDir := t.TempDir()
	o := NewOrganizer(MustNewCategorizer(), lockDir)

	unlock, err := o.lock(dir)
	require.NoError(t, err)

	// flock locks are per open file description, so a second handle on the
	// same lock file conflicts even within this process.
	entries, err := os.ReadDir(lockDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	other := flock.New(filepath.Join(lockDir, entries[0].Name()))
	ok, err := other.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = o.Organize(context.Background(), dir)
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, exists(filepath.Join(dir, "a.pdf")))

	unlock()
	_, err = o.Organize(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, exists(filepath.Join(dir, "Documents", "a.pdf")))
}

func TestPlanDoesNotModify(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.jpg", "Images/b.jpg")

	res, err := newTestOrganizer(t).Plan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []Move{
		{Source: filepath.Join(dir, "a.pdf"), Destination: filepath.Join(dir, "Documents", "a.pdf"), Category: "Documents"},
	}, res.Moved)
	assert.Equal(t, []Skipped{{Path: filepath.Join(dir, "b.jpg"), Reason: "destination exists"}}, res.Skipped)

	assert.True(t, exists(filepath.Join(dir, "a.pdf")))
	assert.False(t, exists(filepath.Join(dir, "Documents")))
}

func TestMoveFileNeverReplaces(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "src.txt", "dst.txt")

	err := moveFile(filepath.Join(dir, "src.txt"), filepath.Join(dir, "dst.txt"))
	assert.ErrorIs(t, err, errDestinationExists)
	data, err := os.ReadFile(filepath.Join(dir, "dst.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dst.txt", string(data))
}

func TestCopyExclusive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "src.txt", "taken.txt")

	require.NoError(t, copyExclusive(filepath.Join(dir, "src.txt"), filepath.Join(dir, "copy.txt")))
	data, err := os.ReadFile(filepath.Join(dir, "copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "src.txt", string(data))

	err = copyExclusive(filepath.Join(dir, "src.txt"), filepath.Join(dir, "taken.txt"))
	assert.ErrorIs(t, err, errDestinationExists)
}
