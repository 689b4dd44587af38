package eightball

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoriabot/memoria/internal/testutils"
)

func TestStoreRandomForChat(t *testing.T) {
	db := testutils.NewTestDB(t, &Answer{})
	store := NewStore(db)
	ctx := context.Background()

	none, err := store.RandomForChat(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, store.Create(ctx, &Answer{ChatID: 1, Answer: "Some great advice"}))
	require.NoError(t, store.Create(ctx, &Answer{ChatID: 1, Answer: "Some amazing advice"}))
	require.NoError(t, store.Create(ctx, &Answer{ChatID: 2, Answer: "Wrong chat"}))

	answer, err := store.RandomForChat(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Contains(t, []string{"Some great advice", "Some amazing advice"}, answer.Answer)
}
