package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLayoutStandard(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.md"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "imgs"), 0o755))

	assert.Equal(t, LayoutStandard, DetectLayout(dir))
}

func TestDetectLayoutPaged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "page_1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "page_2"), 0o755))

	assert.Equal(t, LayoutPaged, DetectLayout(dir))
}

func TestDetectLayoutPagedWithUnparsableIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "page_x"), 0o755))

	assert.Equal(t, LayoutPaged, DetectLayout(dir))
}

func TestDetectLayoutIgnoresPageNamedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_1"), []byte("not a dir"), 0o644))

	assert.Equal(t, LayoutStandard, DetectLayout(dir))
}

func TestPageDirsSortedNumerically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page_10", "page_2", "page_1", "page_x"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	}

	pages := pageDirs(dir)
	require.Len(t, pages, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{pages[0].index, pages[1].index, pages[2].index})

	bad := unparsablePageDirs(dir)
	require.Len(t, bad, 1)
	assert.Equal(t, "page_x", bad[0])
}
