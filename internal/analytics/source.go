package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/masterdata/categories"
	"github.com/newhope/newhope-admin/internal/masterdata/products"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/promotions"
)

// RecordSource supplies the raw records the aggregators consume.
type RecordSource interface {
	ListOrders(ctx context.Context) ([]orders.Order, error)
	ListProducts(ctx context.Context) ([]products.Product, error)
	ListCategories(ctx context.Context) ([]categories.Category, error)
	ListPromotions(ctx context.Context) ([]promotions.Promotion, error)
}

// UserCounter reports the number of registered accounts.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// StoreSource reads records from the document store through the owning
// packages' repositories. Documents that fail to decode are skipped and
// logged so one bad record never blanks a panel.
type StoreSource struct {
	store      docstore.Store
	orders     *orders.StoreRepository
	products   products.Repository
	categories categories.Repository
	promotions promotions.Repository
	logger     *slog.Logger
}

// NewStoreSource wires a StoreSource over store.
func NewStoreSource(store docstore.Store, logger *slog.Logger) *StoreSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreSource{
		store:      store,
		orders:     orders.NewRepository(store),
		products:   products.NewRepository(store),
		categories: categories.NewRepository(store),
		promotions: promotions.NewRepository(store),
		logger:     logger,
	}
}

func tolerate[T any](logger *slog.Logger, what string, items []T, err error) ([]T, error) {
	if err == nil {
		return items, nil
	}
	if docstore.IsMalformed(err) {
		logger.Warn("skipped malformed records", slog.String("collection", what), slog.Any("error", err))
		return items, nil
	}
	return nil, fmt.Errorf("analytics: list %s: %w", what, err)
}

func (s *StoreSource) ListOrders(ctx context.Context) ([]orders.Order, error) {
	items, err := s.orders.List(ctx)
	return tolerate(s.logger, docstore.Orders, items, err)
}

func (s *StoreSource) ListProducts(ctx context.Context) ([]products.Product, error) {
	items, err := s.products.List(ctx)
	return tolerate(s.logger, docstore.Products, items, err)
}

func (s *StoreSource) ListCategories(ctx context.Context) ([]categories.Category, error) {
	items, err := s.categories.List(ctx)
	return tolerate(s.logger, docstore.Categories, items, err)
}

func (s *StoreSource) ListPromotions(ctx context.Context) ([]promotions.Promotion, error) {
	items, err := s.promotions.List(ctx)
	return tolerate(s.logger, docstore.Promotions, items, err)
}

// CountUsers counts USERS documents.
func (s *StoreSource) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx, docstore.Users)
	if err != nil {
		return 0, fmt.Errorf("analytics: count users: %w", err)
	}
	return n, nil
}

var (
	_ RecordSource = (*StoreSource)(nil)
	_ UserCounter  = (*StoreSource)(nil)
)
