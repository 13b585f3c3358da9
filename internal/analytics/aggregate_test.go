package analytics

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhope/newhope-admin/internal/masterdata/categories"
	"github.com/newhope/newhope-admin/internal/masterdata/products"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/shared"
)

func order(at time.Time, state orders.Status, total int64, items ...orders.LineItem) orders.Order {
	return orders.Order{
		Datetime:   shared.NewTimestamp(at),
		State:      state,
		TotalPrice: shared.NewAmount(decimal.NewFromInt(total)),
		Services:   items,
	}
}

func item(title string, qty int) orders.LineItem {
	return orders.LineItem{Title: title, Quantity: shared.NewQuantity(qty)}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestAggregateByTimeIncludesEmptyBuckets(t *testing.T) {
	records := []orders.Order{
		order(date(2024, 2, 10), orders.StatusNew, 10),
		order(date(2024, 5, 3), orders.StatusNew, 20),
		order(date(2024, 5, 4), orders.StatusNew, 30),
	}
	q := TimeBucketQuery{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
		Unit:  Month,
	}
	series := AggregateByTime(records, q)
	require.Len(t, series, BucketCount(q.Start, q.End, q.Unit))
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}, series.Labels())
	counts := Map(series, func(b BucketTotals) int { return b.Count }).Values()
	assert.Equal(t, []int{0, 1, 0, 0, 2, 0}, counts)
	assert.Equal(t, "50", series[4].Value.Revenue.String())
}

func TestBucketCount(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
		unit       BucketUnit
		want       int
	}{
		{"single day", date(2024, 3, 1), date(2024, 3, 1), Day, 1},
		{"leap february", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), Day, 29},
		{"across year", date(2023, 11, 20), date(2024, 2, 1), Month, 4},
		{"reversed", date(2024, 3, 2), date(2024, 3, 1), Day, 0},
	}
	for _, tc := range cases {
		if got := BucketCount(tc.start, tc.end, tc.unit); got != tc.want {
			t.Fatalf("%s: BucketCount = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestAggregateByTimeRespectsLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	// 2024-03-31 20:00 UTC is already April 1st in Ho Chi Minh City.
	records := []orders.Order{order(time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC), orders.StatusNew, 1)}
	series := AggregateByTime(records, TimeBucketQuery{
		Start:    time.Date(2024, 3, 31, 0, 0, 0, 0, loc),
		End:      time.Date(2024, 4, 1, 23, 0, 0, 0, loc),
		Unit:     Day,
		Location: loc,
	})
	require.Len(t, series, 2)
	assert.Equal(t, "2024-04-01", series[1].Label)
	assert.Equal(t, 1, series[1].Value.Count)
}

func TestAggregateByTimeRevenueFilter(t *testing.T) {
	records := []orders.Order{
		order(date(2024, 6, 1), orders.StatusDelivered, 100),
		order(date(2024, 6, 1), orders.StatusCancelled, 50),
	}
	series := AggregateByTime(records, TimeBucketQuery{
		Start:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC),
		Unit:     Day,
		Statuses: []orders.Status{orders.StatusDelivered, orders.StatusCompleted},
	})
	require.Len(t, series, 1)
	assert.Equal(t, "100", series[0].Value.Revenue.String())
	assert.Equal(t, 1, series[0].Value.Count)

	// completed alone still matches delivered records.
	series = AggregateByTime(records, TimeBucketQuery{
		Start:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC),
		Unit:     Day,
		Statuses: []orders.Status{orders.StatusCompleted},
	})
	assert.Equal(t, "100", series[0].Value.Revenue.String())
}

func TestAggregateByTimeMalformedRecords(t *testing.T) {
	var records []orders.Order
	raw := `[
		{"datetime":"2024-06-01T10:00:00Z","state":"completed","totalPrice":"abc"},
		{"datetime":"2024-06-01T11:00:00Z","state":"completed","totalPrice":-40},
		{"state":"completed","totalPrice":70},
		{"datetime":"2024-06-01T12:00:00Z","state":"completed","totalPrice":"25000"}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &records))

	series := AggregateByTime(records, TimeBucketQuery{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC),
		Unit:  Day,
	})
	require.Len(t, series, 1)
	assert.Equal(t, 3, series[0].Value.Count)
	assert.Equal(t, "25000", series[0].Value.Revenue.String())
}

func TestAggregateByTimeEmptyAndReversed(t *testing.T) {
	q := TimeBucketQuery{Start: date(2024, 1, 1), End: date(2024, 1, 3), Unit: Day}
	series := AggregateByTime(nil, q)
	require.Len(t, series, 3)
	for _, p := range series {
		assert.Zero(t, p.Value.Count)
		assert.True(t, p.Value.Revenue.IsZero())
	}

	q.Start, q.End = q.End, q.Start
	assert.Empty(t, AggregateByTime(nil, q))
}

func TestByCategory(t *testing.T) {
	cats := []categories.Category{{Type: "A"}, {Type: "B"}, {Type: "A"}}
	items := []products.Product{{Type: "A"}, {Type: "Z"}}
	series := ByCategory(items, cats)
	assert.Equal(t, []string{"A", "B", UnclassifiedLabel}, series.Labels())
	assert.Equal(t, []int{1, 0, 1}, series.Values())

	series = ByCategory([]products.Product{{Type: " B "}}, cats)
	assert.Equal(t, []string{"A", "B"}, series.Labels(), "unclassified appears only when used")
	assert.Equal(t, []int{0, 1}, series.Values())

	series = ByCategory([]products.Product{{Type: ""}}, nil)
	assert.Equal(t, []string{UnclassifiedLabel}, series.Labels())
}

func TestByStatusDefaultsUnknownToFirst(t *testing.T) {
	records := []orders.Order{
		{State: orders.StatusDelivered},
		{State: orders.StatusCompleted},
		{State: ""},
		{State: "refunded"},
		{State: orders.StatusCancelled},
	}
	series := ByStatus(records, orders.DisplayVocabulary, orders.FulfilledAliases)
	assert.Equal(t, []string{"new", "pending", "preparing", "delivering", "completed", "cancelled"}, series.Labels())
	assert.Equal(t, []int{2, 0, 0, 0, 2, 1}, series.Values())

	assert.Empty(t, ByStatus(records, nil, orders.FulfilledAliases))
}

func TestTopServicesStableTies(t *testing.T) {
	records := []orders.Order{
		{Services: []orders.LineItem{item("Pho", 3), item("Bun", 2)}},
		{Services: []orders.LineItem{item("Com", 3), item("Bun", 3), item("  ", 9)}},
		{Services: []orders.LineItem{item("Pho", 2)}},
	}
	series := TopServices(records, 2)
	assert.Equal(t, []string{"Pho", "Bun"}, series.Labels())
	assert.Equal(t, []int{5, 5}, series.Values())

	assert.Len(t, TopServices(records, 10), 3)
	assert.Empty(t, TopServices(records, 0))
	assert.Empty(t, TopServices(nil, 3))
}

func TestTopServicesDefaultQuantity(t *testing.T) {
	var records []orders.Order
	require.NoError(t, json.Unmarshal([]byte(`[{"services":[{"title":"Trà"},{"title":"Trà","quantity":"x"}]}]`), &records))
	assert.Equal(t, []int{2}, TopServices(records, 1).Values())
}

func TestAggregatorsAreIdempotent(t *testing.T) {
	records := []orders.Order{
		order(date(2024, 6, 1), orders.StatusDelivered, 100, item("Pho", 1), item("Bun", 1)),
		order(date(2024, 6, 2), orders.StatusNew, 50, item("Bun", 1), item("Pho", 1)),
	}
	q := TimeBucketQuery{Start: date(2024, 6, 1), End: date(2024, 6, 3), Unit: Day}
	cats := []categories.Category{{Type: "A"}}
	items := []products.Product{{Type: "A"}, {Type: "?"}}

	if !reflect.DeepEqual(AggregateByTime(records, q), AggregateByTime(records, q)) {
		t.Fatalf("AggregateByTime not idempotent")
	}
	if !reflect.DeepEqual(ByCategory(items, cats), ByCategory(items, cats)) {
		t.Fatalf("ByCategory not idempotent")
	}
	if !reflect.DeepEqual(ByStatus(records, orders.DisplayVocabulary, orders.FulfilledAliases), ByStatus(records, orders.DisplayVocabulary, orders.FulfilledAliases)) {
		t.Fatalf("ByStatus not idempotent")
	}
	for i := 0; i < 20; i++ {
		if got := TopServices(records, 1).Labels(); got[0] != "Pho" {
			t.Fatalf("run %d: tie broken differently: %v", i, got)
		}
	}
}

func TestSeriesWire(t *testing.T) {
	s := Series[int]{{Label: "a", Value: 1}, {Label: "b", Value: 2}}
	raw, err := json.Marshal(ToWire(s))
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["a","b"],"values":[1,2]}`, string(raw))

	empty, err := json.Marshal(ToWire(Series[int]{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":[],"values":[]}`, string(empty))
}
