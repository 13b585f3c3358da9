package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/masterdata/categories"
	"github.com/newhope/newhope-admin/internal/masterdata/products"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/promotions"
)

type stubSource struct {
	orders     []orders.Order
	products   []products.Product
	categories []categories.Category
	ordersErr  error
	calls      atomic.Int32
}

func (s *stubSource) ListOrders(ctx context.Context) ([]orders.Order, error) {
	s.calls.Add(1)
	return s.orders, s.ordersErr
}

func (s *stubSource) ListProducts(ctx context.Context) ([]products.Product, error) {
	return s.products, nil
}

func (s *stubSource) ListCategories(ctx context.Context) ([]categories.Category, error) {
	return s.categories, nil
}

func (s *stubSource) ListPromotions(ctx context.Context) ([]promotions.Promotion, error) {
	return []promotions.Promotion{{Code: "TET"}}, nil
}

type fixedUsers int64

func (f fixedUsers) CountUsers(context.Context) (int64, error) { return int64(f), nil }

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixtureSource() *stubSource {
	return &stubSource{
		orders: []orders.Order{
			order(testNow.Add(-time.Hour), orders.StatusCompleted, 120000, item("Phở", 2)),
			order(testNow.AddDate(0, 0, -3), orders.StatusDelivered, 80000, item("Bún", 1)),
			order(testNow.AddDate(0, -2, 0), orders.StatusCancelled, 50000, item("Phở", 1)),
			order(testNow.AddDate(0, -8, 0), orders.StatusCompleted, 999, item("Cơm", 9)),
		},
		products:   []products.Product{{Type: "Món nước"}, {Type: "Khác"}},
		categories: []categories.Category{{Type: "Món nước"}, {Type: "Đồ uống"}},
	}
}

func TestDashboardPanels(t *testing.T) {
	svc := NewService(fixtureSource(), nil, WithClock(func() time.Time { return testNow }), WithUserCounter(fixedUsers(7)))
	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Empty(t, d.Notices)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}, d.OrdersByMonth.Labels())
	assert.Equal(t, []int{0, 0, 0, 1, 0, 2}, d.OrdersByMonth.Values())
	assert.Equal(t, "200000", d.RevenueByMonth[5].Value.String())
	assert.True(t, d.RevenueByMonth[3].Value.IsZero(), "cancelled orders carry no revenue")
	assert.Len(t, d.OrdersByDay, DaysWindow)
	assert.Equal(t, "2024-06-15", d.OrdersByDay[DaysWindow-1].Label)

	assert.Equal(t, int64(7), d.KPIs.Users)
	assert.Equal(t, 1, d.KPIs.OrdersToday)
	assert.Equal(t, 2, d.KPIs.Products)
	assert.Equal(t, 1, d.KPIs.Promotions)
	assert.Equal(t, "200000", d.KPIs.MonthRevenue.String())

	assert.Equal(t, []string{"Cơm", "Phở", "Bún"}, d.TopServices.Labels())
	assert.Equal(t, []int{0, 0, 0, 0, 3, 1}, d.Status.Values())
	assert.Equal(t, []string{"Món nước", "Đồ uống", UnclassifiedLabel}, d.Categories.Labels())
}

func TestDashboardFetchFailureEmptiesPanelAndSkipsCache(t *testing.T) {
	src := fixtureSource()
	src.ordersErr = errors.New("store down")
	cache := newTestCache(t)
	svc := NewService(src, cache, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	panels := make([]string, 0, len(d.Notices))
	for _, n := range d.Notices {
		panels = append(panels, n.Panel)
	}
	assert.Equal(t, []string{
		PanelOrdersByMonth, PanelRevenueByMonth, PanelOrdersByDay, PanelTopServices, PanelStatus, PanelKPIs,
	}, panels)
	assert.Empty(t, d.OrdersByMonth)
	assert.Empty(t, d.Status)
	assert.Equal(t, []string{"Món nước", "Đồ uống", UnclassifiedLabel}, d.Categories.Labels(), "other panels still render")

	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load(), "partial dashboards must not be cached")
}

func TestDashboardCachedUntilBump(t *testing.T) {
	src := fixtureSource()
	cache := newTestCache(t)
	svc := NewService(src, cache, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	second, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, first.OrdersByMonth, second.OrdersByMonth)
	assert.True(t, first.KPIs.MonthRevenue.Equal(second.KPIs.MonthRevenue))

	require.NoError(t, cache.InvalidateReports(ctx, "orders.status"))
	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestWarmRebuildsOverCachedDashboard(t *testing.T) {
	src := fixtureSource()
	cache := newTestCache(t)
	svc := NewService(src, cache, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	require.NoError(t, svc.Warm(ctx))
	before, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, before.Status[0].Value)

	// written by the ordering app, so no version bump
	src.orders = append(src.orders, order(testNow.Add(-time.Minute), orders.StatusNew, 10000))
	require.NoError(t, svc.Warm(ctx))
	assert.Equal(t, int32(2), src.calls.Load())

	after, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load(), "dashboard served from the warmed cache")
	assert.Equal(t, "new", after.Status[0].Label)
	assert.Equal(t, 1, after.Status[0].Value)
	assert.Equal(t, 2, after.KPIs.OrdersToday)
}

func TestWarmReportsUnavailablePanels(t *testing.T) {
	src := fixtureSource()
	src.ordersErr = errors.New("store down")
	cache := newTestCache(t)
	svc := NewService(src, cache, WithClock(func() time.Time { return testNow }))

	err := svc.Warm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), PanelStatus)

	src.ordersErr = nil
	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load(), "failed warm must not populate the cache")
}

func TestDashboardCancelledContext(t *testing.T) {
	svc := NewService(fixtureSource(), nil, WithClock(func() time.Time { return testNow }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Dashboard(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreSourceKeepsOrdersWithOddCustomerFields(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	_, err := store.Insert(ctx, docstore.Orders, "phone", map[string]any{
		"state": "delivered", "datetime": "2024-06-03T08:00:00Z", "totalPrice": 100000, "phone": 912345678,
	})
	require.NoError(t, err)
	_, err = store.Insert(ctx, docstore.Orders, "tx", map[string]any{
		"state": "delivered", "datetime": "2024-06-10T08:00:00Z", "totalPrice": 50000, "transactionId": 1717200000,
	})
	require.NoError(t, err)
	_, err = store.Insert(ctx, docstore.Orders, "name", map[string]any{"state": "new", "fullName": []string{"x"}})
	require.NoError(t, err)
	_, err = store.Insert(ctx, docstore.Users, "a@x.vn", map[string]any{"role": "admin"})
	require.NoError(t, err)

	src := NewStoreSource(store, nil)
	list, err := src.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "912345678", list[0].Phone)
	assert.Equal(t, "1717200000", list[1].TransactionID)
	assert.Equal(t, "", list[2].FullName)

	series := AggregateByTime(list, TimeBucketQuery{
		Start:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Unit:     Month,
		Statuses: orders.RevenueStatuses,
	})
	require.Len(t, series, 1)
	assert.Equal(t, 2, series[0].Value.Count)
	assert.Equal(t, "150000", series[0].Value.Revenue.String())

	n, err := src.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStoreSourceSkipsNonObjectOrders(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	_, err := store.Insert(ctx, docstore.Orders, "ok", map[string]any{"state": "new", "datetime": "2024-06-01T00:00:00Z"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, docstore.Orders, "bad", json.RawMessage(`["not","an","order"]`))
	require.NoError(t, err)

	list, err := NewStoreSource(store, nil).ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok", list[0].ID)
}
