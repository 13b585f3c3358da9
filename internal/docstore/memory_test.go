package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Insert(ctx, "widgets", "", widget{Name: "a", Count: 1})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = store.Insert(ctx, "widgets", id, widget{Name: "dup"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, store.Merge(ctx, "widgets", id, map[string]any{"count": 5}))
	got, err := GetAs(ctx, store, "widgets", id, func(id string, w *widget) { w.ID = id })
	require.NoError(t, err)
	assert.Equal(t, widget{ID: id, Name: "a", Count: 5}, got)

	err = store.Merge(ctx, "widgets", "missing", map[string]any{"count": 1})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "widgets", id, widget{Name: "b"}))
	got, err = GetAs[widget](ctx, store, "widgets", id, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
	assert.Equal(t, 0, got.Count)

	require.NoError(t, store.Delete(ctx, "widgets", id))
	require.NoError(t, store.Delete(ctx, "widgets", id))
	_, err = store.Get(ctx, "widgets", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, name := range []string{"z", "a", "m"} {
		_, err := store.Insert(ctx, "widgets", name, widget{Name: name})
		require.NoError(t, err)
	}
	docs, err := store.List(ctx, "widgets")
	require.NoError(t, err)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)

	n, err := store.Count(ctx, "widgets")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestMemoryStoreTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Insert(ctx, "Services", "p1", map[string]any{"title": "Phở"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, ProductOptions("p1"), "o1", map[string]any{"OptionName": "Lớn"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		if _, err := tx.DeleteCollection(ctx, ProductOptions("p1")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Count(ctx, ProductOptions("p1"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "options must survive a failed transaction")

	err = store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		if _, err := tx.DeleteCollection(ctx, ProductOptions("p1")); err != nil {
			return err
		}
		return tx.Delete(ctx, "Services", "p1")
	})
	require.NoError(t, err)
	n, _ = store.Count(ctx, ProductOptions("p1"))
	assert.Zero(t, n)
	_, err = store.Get(ctx, "Services", "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollectSkipsMalformedDocuments(t *testing.T) {
	docs := []Document{
		{ID: "1", Data: json.RawMessage(`{"name":"ok","count":2}`)},
		{ID: "2", Data: json.RawMessage(`{"name":["not","a","string"]}`)},
		{ID: "3", Data: json.RawMessage(`{"name":"fine"}`)},
	}
	items, err := Collect("widgets", docs, func(id string, w *widget) { w.ID = id })
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "3", items[1].ID)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"2"}, de.IDs)
}

func TestMemoryStoreClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return fixed })
	_, err := store.Insert(context.Background(), "widgets", "w", widget{Name: "w"})
	require.NoError(t, err)
	doc, err := store.Get(context.Background(), "widgets", "w")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(doc.CreatedAt))
}

func TestEncodeRejectsNonObjects(t *testing.T) {
	_, err := NewMemoryStore().Insert(context.Background(), "widgets", "x", []int{1, 2})
	assert.Error(t, err)
}
