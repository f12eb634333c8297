package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	buf := []byte(`{"a":1}`)
	require.NoError(t, m.Set("cfg", buf))
	buf[0] = 'x'

	got, ok, err := m.Get("cfg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))
	assert.Len(t, m.Snapshot(), 1)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	logger := zerolog.Nop()
	f, err := NewFileStore(dir, &logger)
	require.NoError(t, err)

	_, ok, err := f.Get("games")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set("games", []byte("[]")))
	require.NoError(t, f.Set("games", []byte(`[{"id":"ff-01"}]`)))

	got, ok, err := f.Get("games")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"ff-01"}]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreWatchReportsExternalWrites(t *testing.T) {
	logger := zerolog.Nop()
	f, err := NewFileStore(t.TempDir(), &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 8)
	require.NoError(t, f.Watch(ctx, func(key string) { changed <- key }))

	require.NoError(t, f.Set("cfg", []byte(`{"own":true}`)))
	require.NoError(t, os.WriteFile(filepath.Join(f.Dir(), "games.json"), []byte(`[]`), 0644))

	select {
	case key := <-changed:
		assert.Equal(t, "games", key)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
