package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/memoriabot/memoria/internal/storage"
	"github.com/memoriabot/memoria/internal/testutils"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	db := testutils.NewTestDB(t, &Quote{})
	return NewStore(db), db
}

func TestStoreCreate(t *testing.T) {
	store, db := newTestStore(t)

	quote := &Quote{ChatID: 1, MemberID: 1, Content: "This is a test quote", Author: "Test user"}
	require.NoError(t, store.Create(context.Background(), quote))
	assert.NotZero(t, quote.ID)

	var stored Quote
	require.NoError(t, db.First(&stored, quote.ID).Error)
	assert.Equal(t, "This is a test quote", stored.Content)
	assert.Equal(t, "Test user", stored.Author)
	assert.False(t, stored.LocationConfirmed)
}

func TestStoreCreateValidation(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name  string
		quote Quote
	}{
		{"empty content", Quote{ChatID: 1, MemberID: 1, Author: "someone"}},
		{"empty author", Quote{ChatID: 1, MemberID: 1, Content: "something"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Create(context.Background(), &tt.quote)
			require.Error(t, err)

			var verr *storage.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Messages)
		})
	}
}

func TestStoreLatestUnconfirmed(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	none, err := store.LatestUnconfirmed(ctx, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	older := &Quote{ChatID: 1, MemberID: 1, Content: "older", Author: "a",
		CreatedAt: time.Now().Add(-time.Hour)}
	newer := &Quote{ChatID: 1, MemberID: 1, Content: "newer", Author: "a"}
	confirmed := &Quote{ChatID: 1, MemberID: 1, Content: "done", Author: "a", LocationConfirmed: true}
	otherMember := &Quote{ChatID: 1, MemberID: 2, Content: "theirs", Author: "a"}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Create(newer).Error)
	require.NoError(t, db.Create(confirmed).Error)
	require.NoError(t, db.Create(otherMember).Error)

	latest, err := store.LatestUnconfirmed(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestStoreConfirm(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	quote := &Quote{ChatID: 1, MemberID: 1, Content: "q", Author: "a"}
	require.NoError(t, db.Create(quote).Error)

	require.NoError(t, store.Confirm(ctx, quote))

	var stored Quote
	require.NoError(t, db.First(&stored, quote.ID).Error)
	assert.True(t, stored.LocationConfirmed)
	assert.Nil(t, stored.Longitude)
	assert.Nil(t, stored.Latitude)

	latest, err := store.LatestUnconfirmed(ctx, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestStoreAttachLocation(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	quote := &Quote{ChatID: 1, MemberID: 1, Content: "q", Author: "a"}
	require.NoError(t, db.Create(quote).Error)

	require.NoError(t, store.AttachLocation(ctx, quote, -122.3321, 47.6062))

	var stored Quote
	require.NoError(t, db.First(&stored, quote.ID).Error)
	assert.True(t, stored.LocationConfirmed)
	require.NotNil(t, stored.Longitude)
	require.NotNil(t, stored.Latitude)
	assert.InDelta(t, -122.3321, *stored.Longitude, 1e-6)
	assert.InDelta(t, 47.6062, *stored.Latitude, 1e-6)
}

func TestStoreRandomForChat(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	none, err := store.RandomForChat(ctx, 1, "")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, db.Create(&Quote{ChatID: 1, MemberID: 1, Content: "one", Author: "alice"}).Error)
	require.NoError(t, db.Create(&Quote{ChatID: 1, MemberID: 1, Content: "two", Author: "bob"}).Error)
	require.NoError(t, db.Create(&Quote{ChatID: 2, MemberID: 1, Content: "elsewhere", Author: "alice"}).Error)

	quote, err := store.RandomForChat(ctx, 1, "")
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Contains(t, []string{"one", "two"}, quote.Content)

	byAuthor, err := store.RandomForChat(ctx, 1, "bob")
	require.NoError(t, err)
	require.NotNil(t, byAuthor)
	assert.Equal(t, "two", byAuthor.Content)

	missing, err := store.RandomForChat(ctx, 1, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreCountForChat(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&Quote{ChatID: 1, MemberID: 1, Content: "one", Author: "a"}).Error)
	require.NoError(t, db.Create(&Quote{ChatID: 2, MemberID: 1, Content: "two", Author: "a"}).Error)

	count, err := store.CountForChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
