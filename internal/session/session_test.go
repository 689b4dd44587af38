package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStorePhotoRoundTrip(t *testing.T) {
	store := NewStore()
	key := Key{ChatID: 1, MemberID: 2}

	_, ok := store.Photo(key)
	assert.False(t, ok)

	store.SetPhoto(key, "file-123")
	fileID, ok := store.Photo(key)
	assert.True(t, ok)
	assert.Equal(t, "file-123", fileID)

	// Reading does not consume the entry
	_, ok = store.Photo(key)
	assert.True(t, ok)

	store.ClearPhoto(key)
	_, ok = store.Photo(key)
	assert.False(t, ok)
}

func TestStorePhotoReplaces(t *testing.T) {
	store := NewStore()
	key := Key{ChatID: 1, MemberID: 2}

	store.SetPhoto(key, "old")
	store.SetPhoto(key, "new")

	fileID, ok := store.Photo(key)
	assert.True(t, ok)
	assert.Equal(t, "new", fileID)
}

func TestStoreKeysAreIndependent(t *testing.T) {
	store := NewStore()

	store.SetPhoto(Key{ChatID: 1, MemberID: 1}, "a")
	store.SetPhoto(Key{ChatID: 1, MemberID: 2}, "b")
	store.SetPhoto(Key{ChatID: 2, MemberID: 1}, "c")

	store.ClearPhoto(Key{ChatID: 1, MemberID: 1})

	_, ok := store.Photo(Key{ChatID: 1, MemberID: 1})
	assert.False(t, ok)

	fileID, ok := store.Photo(Key{ChatID: 1, MemberID: 2})
	assert.True(t, ok)
	assert.Equal(t, "b", fileID)

	fileID, ok = store.Photo(Key{ChatID: 2, MemberID: 1})
	assert.True(t, ok)
	assert.Equal(t, "c", fileID)
}

func TestStoreSweep(t *testing.T) {
	store := NewStore()

	current := time.Now()
	store.now = func() time.Time { return current }

	store.SetPhoto(Key{ChatID: 1, MemberID: 1}, "stale")

	current = current.Add(30 * time.Minute)
	store.SetPhoto(Key{ChatID: 1, MemberID: 2}, "fresh")

	removed := store.Sweep(time.Hour)
	assert.Equal(t, 0, removed, "nothing is old enough yet")
	assert.Equal(t, 2, store.Len())

	current = current.Add(45 * time.Minute)
	removed = store.Sweep(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, ok := store.Photo(Key{ChatID: 1, MemberID: 2})
	assert.True(t, ok, "the fresh entry survives the sweep")
}
