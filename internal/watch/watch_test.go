package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"ethixguard/internal/watch"
)

func next(t *testing.T, events <-chan watch.Event) watch.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events closed early")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return watch.Event{}
}

func TestWatchEmitsSubmissionChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	w, err := watch.New(zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	// Non-submission files and report directories are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "trial"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trial", "report.md"), []byte("x"), 0o644))

	path := filepath.Join(dir, "trial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("biosafety: {}\n"), 0o644))

	ev := next(t, events)
	assert.Equal(t, "trial", ev.Project)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, watch.Created, ev.Op)

	cancel()
	require.NoError(t, w.Stop())
	for range events {
	}
}

func TestWatchMissingDir(t *testing.T) {
	w, err := watch.New(nil)
	require.NoError(t, err)
	defer w.Stop()

	_, err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "created", watch.Created.String())
	assert.Equal(t, "modified", watch.Modified.String())
}
