package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinobot22/mineru-tianshu/internal/normalize"
)

type captureNormalizer struct {
	mu   sync.Mutex
	dirs []string
	done chan string
}

func newCaptureNormalizer() *captureNormalizer {
	return &captureNormalizer{done: make(chan string, 16)}
}

func (c *captureNormalizer) Normalize(ctx context.Context, dir string) (*normalize.Result, error) {
	c.mu.Lock()
	c.dirs = append(c.dirs, dir)
	c.mu.Unlock()
	c.done <- dir
	return &normalize.Result{}, nil
}

func (c *captureNormalizer) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.dirs...)
}

func waitFor(t *testing.T, ch <-chan string, timeout time.Duration) string {
	t.Helper()
	select {
	case dir := <-ch:
		return dir
	case <-time.After(timeout):
		t.Fatal("timed out waiting for normalization")
		return ""
	}
}

func TestWatcherRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), newCaptureNormalizer(), time.Second)
	require.Error(t, err)
}

func TestWatcherNormalizesQuietJobDirectory(t *testing.T) {
	root := t.TempDir()
	norm := newCaptureNormalizer()

	w, err := New(root, norm, 100*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	jobPath := filepath.Join(root, "job-001")
	require.NoError(t, os.Mkdir(jobPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(jobPath, "out.md"), []byte("# doc"), 0o644))

	got := waitFor(t, norm.done, 5*time.Second)
	assert.Equal(t, jobPath, got)
}

func TestWatcherCoalescesBurstsIntoOnePass(t *testing.T) {
	root := t.TempDir()
	norm := newCaptureNormalizer()

	w, err := New(root, norm, 200*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	jobPath := filepath.Join(root, "job-burst")
	require.NoError(t, os.Mkdir(jobPath, 0o755))
	for i := 0; i < 5; i++ {
		name := filepath.Join(jobPath, "part"+string(rune('a'+i))+".md")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	waitFor(t, norm.done, 5*time.Second)
	// quiet window after the last write, then exactly one pass
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, []string{jobPath}, norm.calls())
}

func TestWatcherTracksIndependentJobs(t *testing.T) {
	root := t.TempDir()
	norm := newCaptureNormalizer()

	w, err := New(root, norm, 100*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	jobA := filepath.Join(root, "job-a")
	jobB := filepath.Join(root, "job-b")
	require.NoError(t, os.Mkdir(jobA, 0o755))
	require.NoError(t, os.Mkdir(jobB, 0o755))

	seen := map[string]bool{}
	seen[waitFor(t, norm.done, 5*time.Second)] = true
	seen[waitFor(t, norm.done, 5*time.Second)] = true
	assert.True(t, seen[jobA])
	assert.True(t, seen[jobB])
}

func TestWatcherStopCancelsPendingTimers(t *testing.T) {
	root := t.TempDir()
	norm := newCaptureNormalizer()

	w, err := New(root, norm, time.Hour)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.Mkdir(filepath.Join(root, "job-x"), 0o755))
	time.Sleep(100 * time.Millisecond)
	w.Stop()

	assert.Empty(t, norm.calls())
}

func TestJobDir(t *testing.T) {
	root := string(filepath.Separator) + filepath.Join("data", "drop")

	job, ok := jobDir(root, filepath.Join(root, "job-1"))
	require.True(t, ok)
	assert.Equal(t, "job-1", job)

	job, ok = jobDir(root, filepath.Join(root, "job-1", "page_2", "imgs", "a.jpg"))
	require.True(t, ok)
	assert.Equal(t, "job-1", job)

	_, ok = jobDir(root, root)
	assert.False(t, ok)

	_, ok = jobDir(root, string(filepath.Separator)+filepath.Join("data", "other"))
	assert.False(t, ok)
}
