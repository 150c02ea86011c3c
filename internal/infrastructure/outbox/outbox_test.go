package outbox

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), "outbox")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueAndBatch(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Message{To: "919876543210", Template: "payment_confirmation", Params: []string{"Green Meadows"}}))
	require.NoError(t, store.Enqueue(Message{To: "919876543211", Template: "payment_confirmation"}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	msgs, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.NotEmpty(t, msgs[0].ID)
	assert.Equal(t, "payment_confirmation", msgs[0].Template)
}

func TestPriorityOrdering(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Message{To: "a", Template: "t", Priority: 3}))
	require.NoError(t, store.Enqueue(Message{To: "b", Template: "t", Priority: 1}))

	msgs, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].To)
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Enqueue(Message{To: "a", Template: "t"}))

	msgs, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, store.Remove(msgs[0]))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRequeueBumpsRetries(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Enqueue(Message{To: "a", Template: "t"}))

	msgs, err := store.GetBatch(1)
	require.NoError(t, err)
	require.NoError(t, store.Requeue(msgs[0]))

	// The old key is gone; only the bumped copy remains.
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	msgs, err = store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 1, msgs[0].Retries)
}

func TestCleanupDropsOldMessages(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Enqueue(Message{To: "old", Template: "t", Timestamp: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, store.Enqueue(Message{To: "new", Template: "t"}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	msgs, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "new", msgs[0].To)
}
