package session

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestWatchClearedFiresOnRemove(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(afero.NewOsFs(), dir)
	require.NoError(t, store.Save("alice"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleared, err := WatchCleared(ctx, store.Path())
	require.NoError(t, err)

	// a re-save must not count as a logout
	require.NoError(t, store.Save("alice"))
	select {
	case <-cleared:
		t.Fatal("save reported as cleared")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, store.Clear())

	select {
	case <-cleared:
	case <-time.After(2 * time.Second):
		t.Fatal("removal not observed")
	}
}
