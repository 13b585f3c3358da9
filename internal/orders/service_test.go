package orders_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/shared"
)

type countingInvalidator struct {
	calls   int
	reasons []string
}

func (c *countingInvalidator) InvalidateReports(ctx context.Context, reason string) error {
	c.calls++
	c.reasons = append(c.reasons, reason)
	return nil
}

func seedOrders(t *testing.T, store docstore.Store) {
	t.Helper()
	ctx := context.Background()
	docs := map[string]string{
		"A": `{"fullName":"An","datetime":"2024-06-01T08:00:00Z","state":"new","totalPrice":100}`,
		"B": `{"fullName":"Bình","datetime":"2024-06-03T08:00:00Z","state":"delivered","totalPrice":200}`,
		"C": `{"fullName":"Chi","datetime":"bad","state":"completed","totalPrice":300}`,
		"D": `{"fullName":"Dũng","datetime":"2024-06-02T08:00:00Z","state":"cancelled","totalPrice":400}`,
		"E": `{"fullName":["broken"]}`,
	}
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		_, err := store.Insert(ctx, docstore.Orders, id, json.RawMessage(docs[id]))
		require.NoError(t, err)
	}
}

func TestListSortsNewestFirstAndUndatedLast(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedOrders(t, store)
	svc := orders.NewService(orders.NewRepository(store), nil, nil)

	list, err := svc.List(context.Background(), orders.ListFilter{})
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, o := range list {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, ids)
}

func TestListFiltersFulfilledAsOneState(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedOrders(t, store)
	svc := orders.NewService(orders.NewRepository(store), nil, nil)

	list, err := svc.List(context.Background(), orders.ListFilter{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ID)
	assert.Equal(t, "C", list[1].ID)

	list, err = svc.List(context.Background(), orders.ListFilter{Search: "dũng"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "D", list[0].ID)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedOrders(t, store)
	inv := &countingInvalidator{}
	svc := orders.NewService(orders.NewRepository(store), inv, nil)
	ctx := context.Background()

	status, err := svc.UpdateStatus(ctx, "D", "Canceled")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, status)

	status, err = svc.UpdateStatus(ctx, "D", "new")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusNew, status)

	got, err := svc.Get(ctx, "D")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusNew, got.State)
	assert.Equal(t, "Dũng", got.FullName, "status update must not touch other fields")
	assert.Equal(t, 2, inv.calls)

	_, err = svc.UpdateStatus(ctx, "D", "refunded")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateStatus(ctx, "missing", "new")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Equal(t, 2, inv.calls)
}
