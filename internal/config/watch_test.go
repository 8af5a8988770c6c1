package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, ch <-chan Config, within time.Duration) (Config, bool) {
	t.Helper()
	select {
	case cfg, ok := <-ch:
		return cfg, ok
	case <-time.After(within):
		t.Fatalf("no config within %v", within)
		return Config{}, false
	}
}

// stop cancels the watcher and waits for it to close the channel, so no
// goroutine outlives the test or its logger.
func stop(t *testing.T, cancel context.CancelFunc, ch <-chan Config) {
	t.Helper()
	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not shut down")
		}
	}
}

func TestWatchDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "offgrid.yaml", "effects:\n  magnetic:\n    strength: 0.4\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("effects:\n  magnetic:\n    strength: 0.9\n"), 0o644))
	cfg, ok := receive(t, ch, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 0.9, cfg.Effects.Magnetic.Strength)

	stop(t, cancel, ch)
	_, ok = <-ch
	assert.False(t, ok, "channel closes after cancel")
}

func TestWatchDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "offgrid.yaml", "window:\n  width: 1000\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path, nil)
	require.NoError(t, err)

	for w := 1001; w <= 1005; w++ {
		content := []byte(fmt.Sprintf("window:\n  width: %d\n", w))
		require.NoError(t, os.WriteFile(path, content, 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	cfg, ok := receive(t, ch, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 1005, cfg.Window.Width)

	select {
	case extra := <-ch:
		t.Fatalf("burst produced a second reload: %+v", extra.Window)
	case <-time.After(2 * DebounceDelay):
	}
	stop(t, cancel, ch)
}

func TestWatchSkipsBrokenEdits(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "offgrid.yaml", "window:\n  width: 1000\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: -5\n"), 0o644))
	select {
	case cfg := <-ch:
		t.Fatalf("invalid config delivered: %+v", cfg.Window)
	case <-time.After(3 * DebounceDelay):
	}

	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: 900\n"), 0o644))
	cfg, ok := receive(t, ch, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 900, cfg.Window.Width)
	stop(t, cancel, ch)
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "offgrid.yaml", "window:\n  width: 1000\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path, nil)
	require.NoError(t, err)

	writeFile(t, dir, "other.yaml", "window:\n  width: 10\n")
	select {
	case cfg := <-ch:
		t.Fatalf("sibling write delivered a config: %+v", cfg.Window)
	case <-time.After(3 * DebounceDelay):
	}
	stop(t, cancel, ch)
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "offgrid.yaml"), nil)
	assert.Error(t, err)
}
