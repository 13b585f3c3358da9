package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/newhope/newhope-admin/internal/masterdata/categories"
	"github.com/newhope/newhope-admin/internal/masterdata/products"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/promotions"
)

// Dashboard windows.
const (
	MonthsWindow = 6
	DaysWindow   = 30
	TopN         = 5
)

// Panel identifiers, shared by notices, exports and the series API.
const (
	PanelOrdersByMonth  = "orders-by-month"
	PanelRevenueByMonth = "revenue-by-month"
	PanelOrdersByDay    = "orders-by-day"
	PanelTopServices    = "top-services"
	PanelStatus         = "status"
	PanelCategories     = "categories"
	PanelKPIs           = "kpis"
)

// orderPanels are the panels computed from orders. The orders-today and
// month-revenue cards fall under PanelKPIs.
var orderPanels = []string{
	PanelOrdersByMonth,
	PanelRevenueByMonth,
	PanelOrdersByDay,
	PanelTopServices,
	PanelStatus,
	PanelKPIs,
}

// Notice tells the operator a panel could not be loaded.
type Notice struct {
	Panel   string `json:"panel"`
	Message string `json:"message"`
}

// KPIs are the headline cards.
type KPIs struct {
	Users        int64           `json:"users"`
	OrdersToday  int             `json:"ordersToday"`
	Products     int             `json:"products"`
	Promotions   int             `json:"promotions"`
	MonthRevenue decimal.Decimal `json:"monthRevenue"`
}

// Dashboard holds every home screen panel.
type Dashboard struct {
	GeneratedAt    time.Time               `json:"generatedAt"`
	KPIs           KPIs                    `json:"kpis"`
	OrdersByMonth  Series[int]             `json:"ordersByMonth"`
	RevenueByMonth Series[decimal.Decimal] `json:"revenueByMonth"`
	OrdersByDay    Series[int]             `json:"ordersByDay"`
	TopServices    Series[int]             `json:"topServices"`
	Status         Series[int]             `json:"status"`
	Categories     Series[int]             `json:"categories"`
	Notices        []Notice                `json:"notices,omitempty"`
}

// Service assembles the dashboard from a RecordSource, caching complete
// results in Redis.
type Service struct {
	source RecordSource
	users  UserCounter
	cache  *Cache
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// Option customises the Service.
type Option func(*Service)

// WithLocation sets the zone calendar buckets are cut in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUserCounter enables the user count card.
func WithUserCounter(users UserCounter) Option {
	return func(s *Service) { s.users = users }
}

// NewService wires a RecordSource with a Cache helper. cache may be nil.
func NewService(source RecordSource, cache *Cache, opts ...Option) *Service {
	s := &Service{source: source, cache: cache, loc: time.UTC, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the reporting time zone.
func (s *Service) Location() *time.Location { return s.loc }

// Dashboard returns the cached dashboard for today, computing it on a miss.
// Results carrying notices are served but never cached.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now().In(s.loc)
	key := s.dashboardKey(ctx, now)
	if key != "" {
		var cached Dashboard
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read", slog.Any("error", err))
		}
		if ok {
			return cached, nil
		}
	}

	d, err := s.Build(ctx, now)
	if err != nil {
		return Dashboard{}, err
	}
	s.store(ctx, key, d)
	return d, nil
}

func (s *Service) dashboardKey(ctx context.Context, now time.Time) string {
	key, err := s.cache.BuildKey(ctx, "newhope", "dashboard", now.Format("2006-01-02"))
	if err != nil {
		s.logger.Warn("dashboard cache key", slog.Any("error", err))
		return ""
	}
	return key
}

func (s *Service) store(ctx context.Context, key string, d Dashboard) {
	if key == "" || len(d.Notices) > 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, d); err != nil {
		s.logger.Warn("dashboard cache write", slog.Any("error", err))
	}
}

type inputs struct {
	orders        []orders.Order
	products      []products.Product
	categories    []categories.Category
	promotions    []promotions.Promotion
	users         int64
	ordersErr     error
	productsErr   error
	categoriesErr error
	promotionsErr error
	usersErr      error
}

func (s *Service) fetch(ctx context.Context) (inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in.orders, in.ordersErr = s.source.ListOrders(gctx)
		return nil
	})
	g.Go(func() error {
		in.products, in.productsErr = s.source.ListProducts(gctx)
		return nil
	})
	g.Go(func() error {
		in.categories, in.categoriesErr = s.source.ListCategories(gctx)
		return nil
	})
	g.Go(func() error {
		in.promotions, in.promotionsErr = s.source.ListPromotions(gctx)
		return nil
	})
	if s.users != nil {
		g.Go(func() error {
			in.users, in.usersErr = s.users.CountUsers(gctx)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return inputs{}, err
	}
	return in, nil
}

// Build computes the dashboard as of now without consulting the cache.
// Every fetch failure empties the panels depending on it and adds a notice.
func (s *Service) Build(ctx context.Context, now time.Time) (Dashboard, error) {
	in, err := s.fetch(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now = now.In(s.loc)
	d := Dashboard{
		GeneratedAt:    now,
		OrdersByMonth:  Series[int]{},
		RevenueByMonth: Series[decimal.Decimal]{},
		OrdersByDay:    Series[int]{},
		TopServices:    Series[int]{},
		Status:         Series[int]{},
		Categories:     Series[int]{},
	}
	d.KPIs.MonthRevenue = decimal.Zero
	notice := func(panel, message string, err error) {
		s.logger.Error("dashboard fetch failed", slog.String("panel", panel), slog.Any("error", err))
		d.Notices = append(d.Notices, Notice{Panel: panel, Message: message})
	}

	if in.ordersErr != nil {
		for _, panel := range orderPanels {
			notice(panel, "Không thể tải dữ liệu đơn hàng", in.ordersErr)
		}
	} else {
		s.fillOrderPanels(&d, in.orders, now)
	}

	switch {
	case in.productsErr != nil:
		notice(PanelCategories, "Không thể tải danh sách sản phẩm", in.productsErr)
	case in.categoriesErr != nil:
		d.KPIs.Products = len(in.products)
		notice(PanelCategories, "Không thể tải danh mục", in.categoriesErr)
	default:
		d.KPIs.Products = len(in.products)
		d.Categories = ByCategory(in.products, in.categories)
	}

	if in.promotionsErr != nil {
		notice(PanelKPIs, "Không thể tải khuyến mãi", in.promotionsErr)
	} else {
		d.KPIs.Promotions = len(in.promotions)
	}
	if in.usersErr != nil {
		notice(PanelKPIs, "Không thể đếm người dùng", in.usersErr)
	} else {
		d.KPIs.Users = in.users
	}
	return d, nil
}

func (s *Service) fillOrderPanels(d *Dashboard, records []orders.Order, now time.Time) {
	monthStart := floor(now, Month)
	sixMonths := TimeBucketQuery{
		Start:    monthStart.AddDate(0, -(MonthsWindow - 1), 0),
		End:      now,
		Unit:     Month,
		Location: s.loc,
	}
	d.OrdersByMonth = Map(AggregateByTime(records, sixMonths), func(b BucketTotals) int { return b.Count })

	revenue := sixMonths
	revenue.Statuses = orders.RevenueStatuses
	d.RevenueByMonth = Map(AggregateByTime(records, revenue), func(b BucketTotals) decimal.Decimal { return b.Revenue })
	if n := len(d.RevenueByMonth); n > 0 {
		d.KPIs.MonthRevenue = d.RevenueByMonth[n-1].Value
	}

	days := AggregateByTime(records, TimeBucketQuery{
		Start:    floor(now, Day).AddDate(0, 0, -(DaysWindow - 1)),
		End:      now,
		Unit:     Day,
		Location: s.loc,
	})
	d.OrdersByDay = Map(days, func(b BucketTotals) int { return b.Count })
	if n := len(days); n > 0 {
		d.KPIs.OrdersToday = days[n-1].Value.Count
	}

	d.TopServices = TopServices(records, TopN)
	d.Status = ByStatus(records, orders.DisplayVocabulary, orders.FulfilledAliases)
}

// OrdersSeries aggregates orders for an arbitrary window, bypassing the cache.
func (s *Service) OrdersSeries(ctx context.Context, q TimeBucketQuery) (Series[BucketTotals], error) {
	if q.Location == nil {
		q.Location = s.loc
	}
	records, err := s.source.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: orders series: %w", err)
	}
	return AggregateByTime(records, q), nil
}

// Warm rebuilds today's dashboard from the source and overwrites the cached
// copy. Orders written by the ordering app never bump the cache version, so
// a cache hit is not trusted here. A dashboard with notices is not stored
// and the panels are reported as an error so the task is retried.
func (s *Service) Warm(ctx context.Context) error {
	now := s.now().In(s.loc)
	d, err := s.Build(ctx, now)
	if err != nil {
		return err
	}
	if len(d.Notices) > 0 {
		panels := make([]string, 0, len(d.Notices))
		for _, n := range d.Notices {
			panels = append(panels, n.Panel)
		}
		return fmt.Errorf("analytics: warm: unavailable panels %s", strings.Join(panels, ","))
	}
	s.store(ctx, s.dashboardKey(ctx, now), d)
	return nil
}
