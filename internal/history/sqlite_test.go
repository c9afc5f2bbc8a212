package history

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6d61/tampergen/internal/tamper"
	"github.com/0x6d61/tampergen/internal/variant"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBatch(t *testing.T) *Batch {
	t.Helper()
	catalog, err := tamper.Default().Select("original", "space2comment", "charencode")
	require.NoError(t, err)

	// charencode rejects the emoji, so the batch carries one failure.
	res, err := variant.Generate("x\U0001F600", catalog, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res.Seed = 7
	return FromResult(res)
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	batch := sampleBatch(t)
	require.NoError(t, store.Save(ctx, batch))
	assert.NotEmpty(t, batch.ID, "Save should assign an ID")
	assert.False(t, batch.CreatedAt.IsZero(), "Save should set CreatedAt")

	loaded, err := store.LoadByID(ctx, batch.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(7), loaded.Seed)
	assert.Equal(t, batch.Variants, loaded.Variants)
	assert.Equal(t, variant.BaselineLabel, loaded.Baseline.Label)
	require.Len(t, loaded.Failures, 1)
	assert.Equal(t, "charencode", loaded.Failures[0].Name)
	assert.Equal(t, 9, loaded.Failures[0].Index)

	res := loaded.Result()
	require.Len(t, res.Failures, 1)
	assert.Error(t, res.Failures[0].Err)
}

func TestSQLiteStore_LoadByID_NotFound(t *testing.T) {
	store := newStore(t)
	loaded, err := store.LoadByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStore_SaveUpsert(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	batch := sampleBatch(t)
	batch.ID = "fixed"
	require.NoError(t, store.Save(ctx, batch))
	batch.Seed = 8
	require.NoError(t, store.Save(ctx, batch))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(8), summaries[0].Seed)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	older := sampleBatch(t)
	older.ID = "older"
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleBatch(t)
	newer.ID = "newer"

	for _, b := range []*Batch{older, newer} {
		require.NoError(t, store.Save(ctx, b), b.ID)
	}

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "newer", summaries[0].ID)
	assert.Equal(t, "older", summaries[1].ID)
	assert.Equal(t, 3, summaries[0].Variants, "baseline included")
}

func TestSQLiteStore_Find(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	batch := sampleBatch(t)
	require.NoError(t, store.Save(ctx, batch))

	found, err := store.Find(ctx, batch.Baseline.Text)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, variant.BaselineLabel, found[0].Label)
	assert.Equal(t, batch.ID, found[0].BatchID)

	found, err = store.Find(ctx, "not a stored variant")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	batch := sampleBatch(t)
	require.NoError(t, store.Save(ctx, batch))
	require.NoError(t, store.Delete(ctx, batch.ID))

	loaded, err := store.LoadByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	found, err := store.Find(ctx, batch.Variants[0].Text)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSQLiteStore_Cleanup(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	old := sampleBatch(t)
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := sampleBatch(t)
	for _, b := range []*Batch{old, fresh} {
		require.NoError(t, store.Save(ctx, b))
	}

	n, err := store.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, fresh.ID, summaries[0].ID)
}

func TestFailureRecord_RoundTrip(t *testing.T) {
	res := &variant.Result{
		Failures: []variant.Failure{{Index: 2, Name: "x", Err: errors.New("bad")}},
	}
	back := FromResult(res).Result()
	require.Len(t, back.Failures, 1)
	assert.EqualError(t, back.Failures[0].Err, "bad")
}
