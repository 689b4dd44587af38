package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoriabot/memoria/internal/testutils"
)

func TestServiceAddAndRecentTexts(t *testing.T) {
	db := testutils.NewTestDB(t, &Entry{})
	service := NewService(db)
	ctx := context.Background()

	base := time.Now().Unix()
	messages := []Message{
		{MessageID: 1, ChatID: 100, Date: base, Text: "first"},
		{MessageID: 2, ChatID: 100, Date: base + 1, Text: ""},
		{MessageID: 3, ChatID: 100, Date: base + 2, Text: "third"},
		{MessageID: 4, ChatID: 200, Date: base + 3, Text: "other chat"},
	}
	for _, msg := range messages {
		require.NoError(t, service.Add(ctx, msg))
	}

	texts, err := service.RecentTexts(ctx, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first"}, texts, "newest first, empty texts skipped")
}

func TestServiceAddReplacesRedelivery(t *testing.T) {
	db := testutils.NewTestDB(t, &Entry{})
	service := NewService(db)
	ctx := context.Background()

	require.NoError(t, service.Add(ctx, Message{MessageID: 1, ChatID: 100, Date: 10, Text: "original"}))
	require.NoError(t, service.Add(ctx, Message{MessageID: 1, ChatID: 100, Date: 20, Text: "edited"}))

	var count int64
	require.NoError(t, db.Model(&Entry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	texts, err := service.RecentTexts(ctx, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"edited"}, texts)
}

func TestServiceRecentTextsHonorsLimit(t *testing.T) {
	db := testutils.NewTestDB(t, &Entry{})
	service := NewService(db)
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, service.Add(ctx, Message{MessageID: i, ChatID: 100, Date: i, Text: "msg"}))
	}

	texts, err := service.RecentTexts(ctx, 100, 2)
	require.NoError(t, err)
	assert.Len(t, texts, 2)
}

func TestServiceClean(t *testing.T) {
	db := testutils.NewTestDB(t, &Entry{})
	service := NewService(db)
	ctx := context.Background()

	old := time.Now().Add(-72 * time.Hour).Unix()
	fresh := time.Now().Unix()

	require.NoError(t, service.Add(ctx, Message{MessageID: 1, ChatID: 100, Date: old, Text: "old"}))
	require.NoError(t, service.Add(ctx, Message{MessageID: 2, ChatID: 100, Date: fresh, Text: "fresh"}))

	deleted, err := service.Clean(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	texts, err := service.RecentTexts(ctx, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, texts)
}
