package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/endorses/lexmatch/internal/pkg/ahocorasick"
	"github.com/endorses/lexmatch/internal/pkg/alphabet"
	"github.com/endorses/lexmatch/internal/pkg/constants"
	"github.com/endorses/lexmatch/internal/pkg/keywords"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 3 * time.Second
	tick    = 20 * time.Millisecond
)

func startWatcher(t *testing.T, path string, m *ahocorasick.Reloadable, cfg Config) *Watcher {
	t.Helper()
	w := New(path, m, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("failed to stop watcher: %v", err)
		}
	})
	return w
}

func TestWatcherLoadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(path, []byte("he\nshe\n"), 0600))

	m := ahocorasick.NewReloadable(nil)
	w := startWatcher(t, path, m, DefaultConfig())

	assert.Equal(t, uint64(1), w.Reloads())
	assert.Equal(t, 2, m.PatternCount())
	assert.True(t, w.Stats().Running)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	for _, polling := range []bool{false, true} {
		name := "fsnotify"
		if polling {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kw.yaml")
			require.NoError(t, keywords.WriteFile(path, &keywords.Set{Keywords: []string{"he"}}))

			m := ahocorasick.NewReloadable(nil)
			cfg := DefaultConfig()
			cfg.PollInterval = tick
			cfg.ForcePolling = polling
			w := startWatcher(t, path, m, cfg)
			require.Equal(t, 1, m.PatternCount())

			require.NoError(t, keywords.WriteFile(path, &keywords.Set{Keywords: []string{"he", "she", "hers"}}))

			require.Eventually(t, func() bool { return m.PatternCount() == 3 }, waitFor, tick)
			assert.GreaterOrEqual(t, w.Reloads(), uint64(2))

			matches, err := m.FindKeywords("ushers")
			require.NoError(t, err)
			assert.Len(t, matches, 3)
		})
	}
}

func TestWatcherKeepsPreviousOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(path, []byte("he\nshe\n"), 0600))

	m := ahocorasick.NewReloadable(nil)
	cfg := DefaultConfig()
	cfg.PollInterval = tick
	cfg.ForcePolling = true
	w := startWatcher(t, path, m, cfg)
	require.Equal(t, 2, m.PatternCount())

	// Upper case is outside the lower alphabet.
	require.NoError(t, os.WriteFile(path, []byte("he\nSHE\nhers\n"), 0600))

	require.Eventually(t, func() bool { return w.Errors() > 0 }, waitFor, tick)
	assert.Equal(t, 2, m.PatternCount())
	assert.Contains(t, w.Stats().LastError, "invalid symbol")
}

func TestWatcherAlphabetMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.yaml")
	require.NoError(t, keywords.WriteFile(path, &keywords.Set{Alphabet: "ascii", Keywords: []string{"He"}}))

	w := New(path, ahocorasick.NewReloadable(alphabet.Lower()), DefaultConfig())
	err := w.Reload()
	assert.ErrorContains(t, err, "does not match matcher alphabet")
	assert.Equal(t, uint64(1), w.Errors())

	cfg := DefaultConfig()
	cfg.Alphabet = "ascii"
	m := ahocorasick.NewReloadable(alphabet.ASCII())
	w = New(path, m, cfg)
	require.NoError(t, w.Reload())
	assert.Equal(t, 1, m.PatternCount())
}

func TestWatcherNonExistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.txt")

	m := ahocorasick.NewReloadable(nil)
	cfg := DefaultConfig()
	cfg.PollInterval = tick
	w := startWatcher(t, path, m, cfg)

	assert.Equal(t, uint64(1), w.Errors())
	assert.Equal(t, 0, m.PatternCount())

	require.NoError(t, keywords.WriteFile(path, &keywords.Set{Keywords: []string{"his"}}))
	require.Eventually(t, func() bool { return m.PatternCount() == 1 }, waitFor, tick)
}

func TestWatcherDoubleStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(path, []byte("he\n"), 0600))

	w := startWatcher(t, path, ahocorasick.NewReloadable(nil), DefaultConfig())
	err := w.Start(context.Background())
	assert.ErrorContains(t, err, "already running")
}

func TestWatcherStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(path, []byte("he\n"), 0600))

	w := New(path, ahocorasick.NewReloadable(nil), DefaultConfig())
	require.NoError(t, w.Stop())

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.Stats().Running)
}

func TestWatcherSeesWriteRightAfterStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(path, []byte("he\n"), 0600))

	m := ahocorasick.NewReloadable(nil)
	cfg := DefaultConfig()
	cfg.PollInterval = tick
	cfg.ForcePolling = true
	startWatcher(t, path, m, cfg)

	require.NoError(t, os.WriteFile(path, []byte("he\nshe\nhers\n"), 0600))
	require.Eventually(t, func() bool { return m.PatternCount() == 3 }, waitFor, tick)
}

func TestWatcherBaselineIsLoadedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(path, []byte("he\n"), 0600))

	w := New(path, ahocorasick.NewReloadable(nil), DefaultConfig())
	require.NoError(t, w.Reload())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, w.changed(info))

	// A write after the load, before any poll, is still a change.
	require.NoError(t, os.WriteFile(path, []byte("he\nshe\n"), 0600))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.True(t, w.changed(info))
}

func TestWatcherRestart(t *testing.T) {
	for _, polling := range []bool{false, true} {
		name := "fsnotify"
		if polling {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kw.txt")
			require.NoError(t, os.WriteFile(path, []byte("he\n"), 0600))

			m := ahocorasick.NewReloadable(nil)
			cfg := DefaultConfig()
			cfg.PollInterval = tick
			cfg.ForcePolling = polling
			w := New(path, m, cfg)

			require.NoError(t, w.Start(context.Background()))
			require.NoError(t, w.Stop())

			require.NoError(t, w.Start(context.Background()))
			t.Cleanup(func() { _ = w.Stop() })
			assert.True(t, w.Stats().Running)

			require.NoError(t, os.WriteFile(path, []byte("he\nshe\n"), 0600))
			require.Eventually(t, func() bool { return m.PatternCount() == 2 }, waitFor, tick)
			assert.GreaterOrEqual(t, w.Reloads(), uint64(3))
		})
	}
}

func TestWatcherStopIsBounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(path, []byte("he\n"), 0600))

	cfg := DefaultConfig()
	cfg.ForcePolling = true
	w := New(path, ahocorasick.NewReloadable(nil), cfg)
	require.NoError(t, w.Start(context.Background()))

	// A loop that never finishes.
	w.wg.Add(1)
	defer w.wg.Done()

	start := time.Now()
	require.NoError(t, w.Stop())
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, constants.GracefulShutdownTimeout)
	assert.Less(t, elapsed, constants.GracefulShutdownTimeout+waitFor)
	assert.False(t, w.Stats().Running)
}
