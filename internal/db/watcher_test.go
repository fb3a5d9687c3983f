package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherPublishesExternalWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping filesystem watcher test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := openTestDB(t)
	writer, err := Open(reader.Path())
	require.NoError(t, err)
	defer writer.Close()

	w, err := NewWatcher(reader, 50*time.Millisecond)
	require.NoError(t, err)
	go w.Run(ctx)

	updates, err := reader.Subscribe(ctx)
	require.NoError(t, err)
	<-updates

	_, err = writer.CreateTag(ctx, "from elsewhere")
	require.NoError(t, err)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap := <-updates:
			if len(snap.Tags) == 1 {
				assert.Equal(t, "from elsewhere", snap.Tags[0].Name)
				return
			}
		case <-deadline:
			t.Fatal("watcher never published the external write")
		}
	}
}

func TestNewWatcherNeedsPath(t *testing.T) {
	database, _ := newMockDB(t)
	_, err := NewWatcher(database, 0)
	assert.Error(t, err)
}
