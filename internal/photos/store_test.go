package photos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoriabot/memoria/internal/storage"
	"github.com/memoriabot/memoria/internal/testutils"
)

func TestStoreCreate(t *testing.T) {
	db := testutils.NewTestDB(t, &Photo{})
	store := NewStore(db)

	caption := "a sunset"
	photo := &Photo{ChatID: 1, MemberID: 1, TelegramPhoto: "file-123", Caption: &caption}
	require.NoError(t, store.Create(context.Background(), photo))
	assert.NotZero(t, photo.ID)
}

func TestStoreCreateValidation(t *testing.T) {
	db := testutils.NewTestDB(t, &Photo{})
	store := NewStore(db)

	err := store.Create(context.Background(), &Photo{ChatID: 1, MemberID: 1})
	require.Error(t, err)

	var verr *storage.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestStoreRandomForChat(t *testing.T) {
	db := testutils.NewTestDB(t, &Photo{})
	store := NewStore(db)
	ctx := context.Background()

	none, err := store.RandomForChat(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, db.Create(&Photo{ChatID: 1, MemberID: 1, TelegramPhoto: "file-1"}).Error)
	require.NoError(t, db.Create(&Photo{ChatID: 2, MemberID: 1, TelegramPhoto: "file-other"}).Error)

	photo, err := store.RandomForChat(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, "file-1", photo.TelegramPhoto)

	// Each retrieval bumps the access counter
	_, err = store.RandomForChat(ctx, 1)
	require.NoError(t, err)

	var stored Photo
	require.NoError(t, db.Where("telegram_photo = ?", "file-1").First(&stored).Error)
	assert.Equal(t, 2, stored.TimesAccessed)
}
