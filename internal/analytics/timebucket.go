package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/orders"
)

// BucketUnit is the calendar granularity of a time series.
type BucketUnit int

const (
	Day BucketUnit = iota
	Month
)

func (u BucketUnit) String() string {
	if u == Month {
		return "month"
	}
	return "day"
}

// ParseBucketUnit accepts "day" or "month".
func ParseBucketUnit(raw string) (BucketUnit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day", "daily", "":
		return Day, nil
	case "month", "monthly":
		return Month, nil
	default:
		return Day, fmt.Errorf("analytics: unknown bucket unit %q", raw)
	}
}

func (u BucketUnit) layout() string {
	if u == Month {
		return "2006-01"
	}
	return "2006-01-02"
}

// TimeBucketQuery selects the window, granularity and status filter of
// AggregateByTime. Start and End are inclusive. A nil Location means UTC.
type TimeBucketQuery struct {
	Start    time.Time
	End      time.Time
	Unit     BucketUnit
	Statuses []orders.Status
	Location *time.Location
}

// BucketTotals is the content of one calendar bucket.
type BucketTotals struct {
	Start   time.Time       `json:"start"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// BucketCount returns how many calendar buckets of unit span [start, end],
// evaluated in start's location. It is zero when start is after end.
func BucketCount(start, end time.Time, unit BucketUnit) int {
	if start.After(end) {
		return 0
	}
	end = end.In(start.Location())
	return bucketIndex(floor(start, unit), floor(end, unit), unit) + 1
}

// AggregateByTime groups records into contiguous calendar buckets covering
// the query window, empty buckets included. Records outside the window, with
// an invalid datetime, or failing the status filter are dropped. Invalid or
// negative totals are counted but add nothing to revenue.
func AggregateByTime(records []orders.Order, q TimeBucketQuery) Series[BucketTotals] {
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	start, end := q.Start.In(loc), q.End.In(loc)
	n := BucketCount(start, end, q.Unit)
	out := make(Series[BucketTotals], n)
	if n == 0 {
		return out
	}
	first := floor(start, q.Unit)
	for i := range out {
		bucketStart := advance(first, q.Unit, i)
		out[i] = Point[BucketTotals]{
			Label: bucketStart.Format(q.Unit.layout()),
			Value: BucketTotals{Start: bucketStart, Revenue: decimal.Zero},
		}
	}

	allowed := statusSet(q.Statuses)
	for _, rec := range records {
		if !rec.Datetime.Valid {
			continue
		}
		at := rec.Datetime.Time.In(loc)
		if at.Before(start) || at.After(end) {
			continue
		}
		if allowed != nil && !allowed[canonicalStatus(rec.State)] {
			continue
		}
		idx := bucketIndex(first, floor(at, q.Unit), q.Unit)
		if idx < 0 || idx >= n {
			continue
		}
		totals := &out[idx].Value
		totals.Count++
		totals.Revenue = totals.Revenue.Add(revenueOf(rec))
	}
	return out
}

func revenueOf(o orders.Order) decimal.Decimal {
	v := o.TotalPrice.OrZero()
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// canonicalStatus applies the default-to-new policy and folds fulfilled
// aliases so delivered and completed match each other.
func canonicalStatus(s orders.Status) orders.Status {
	if !s.Known() {
		s = orders.DisplayVocabulary[0]
	}
	return orders.FulfilledAliases.Resolve(s)
}

func statusSet(statuses []orders.Status) map[orders.Status]bool {
	if len(statuses) == 0 {
		return nil
	}
	set := make(map[orders.Status]bool, len(statuses))
	for _, s := range statuses {
		set[canonicalStatus(s)] = true
	}
	return set
}

func floor(t time.Time, unit BucketUnit) time.Time {
	y, m, d := t.Date()
	if unit == Month {
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func advance(t time.Time, unit BucketUnit, steps int) time.Time {
	if unit == Month {
		return t.AddDate(0, steps, 0)
	}
	return t.AddDate(0, 0, steps)
}

// bucketIndex counts calendar steps between two floored times. Days are
// counted on the civil calendar so DST transitions do not skew the result.
func bucketIndex(from, to time.Time, unit BucketUnit) int {
	if unit == Month {
		return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	}
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
