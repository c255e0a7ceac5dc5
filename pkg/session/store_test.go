package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateUniqueIDs(t *testing.T) {
	store := NewStore()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		sess := store.Create()
		require.NotEmpty(t, sess.ID)
		require.False(t, seen[sess.ID], "duplicate id %s", sess.ID)
		seen[sess.ID] = true
	}
	assert.Equal(t, 1000, store.Len())
}

func TestStore_CreateTimestamps(t *testing.T) {
	store := NewStore()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	sess := store.Create()
	assert.Equal(t, fixed, sess.CreatedAt)
	assert.Equal(t, fixed, sess.LastActivity)
	assert.Empty(t, sess.Messages)
}

func TestStore_GetNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Get("no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_TouchAndAppend(t *testing.T) {
	store := NewStore()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return created }

	sess := store.Create()

	later := created.Add(10 * time.Minute)
	store.now = func() time.Time { return later }

	updated, err := store.TouchAndAppend(sess.ID, Message{Role: RoleUser, Content: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, later, updated.LastActivity)
	require.Len(t, updated.Messages, 1)
	assert.Equal(t, "Hello", updated.Messages[0].Content)
	assert.Equal(t, later, updated.Messages[0].Timestamp)

	// last_activity never precedes created_at
	assert.False(t, updated.LastActivity.Before(updated.CreatedAt))
}

func TestStore_TouchAndAppendNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.TouchAndAppend("missing", Message{Role: RoleUser, Content: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_DeleteIdempotent(t *testing.T) {
	store := NewStore()
	sess := store.Create()
	store.Create()

	store.Delete(sess.ID)
	assert.Equal(t, 1, store.Len())

	// Second delete is a no-op, no panic, size unchanged.
	store.Delete(sess.ID)
	assert.Equal(t, 1, store.Len())
}

func TestStore_ConcurrentAppendsNoLostUpdates(t *testing.T) {
	store := NewStore()
	sess := store.Create()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := store.TouchAndAppend(sess.ID, Message{
				Role:    RoleUser,
				Content: fmt.Sprintf("message-%d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	final, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.Len(t, final.Messages, n)

	seen := make(map[string]bool)
	for _, msg := range final.Messages {
		seen[msg.Content] = true
	}
	for i := 0; i < n; i++ {
		assert.True(t, seen[fmt.Sprintf("message-%d", i)], "lost message-%d", i)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	sess := store.Create()
	_, err := store.TouchAndAppend(sess.ID, Message{Role: RoleUser, Content: "original"})
	require.NoError(t, err)

	copy1, err := store.Get(sess.ID)
	require.NoError(t, err)
	copy1.Messages[0].Content = "mutated"
	copy1.Messages = append(copy1.Messages, Message{Role: RoleAssistant, Content: "extra"})

	copy2, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.Len(t, copy2.Messages, 1)
	assert.Equal(t, "original", copy2.Messages[0].Content)
}

func TestStore_IDsSnapshot(t *testing.T) {
	store := NewStore()
	a := store.Create()
	b := store.Create()

	ids := store.IDs()
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
}
