package promotions

import (
	"context"

	"github.com/newhope/newhope-admin/internal/docstore"
)

// Repository persists promotions.
type Repository interface {
	List(ctx context.Context) ([]Promotion, error)
	Get(ctx context.Context, id string) (Promotion, error)
	Create(ctx context.Context, p Promotion) (string, error)
	Update(ctx context.Context, id string, p Promotion) error
	Delete(ctx context.Context, id string) error
}

type storeRepository struct {
	store docstore.Store
}

// NewRepository keeps promotions in the Discount collection.
func NewRepository(store docstore.Store) Repository {
	return &storeRepository{store: store}
}

func assignID(id string, p *Promotion) { p.ID = id }

func (r *storeRepository) List(ctx context.Context) ([]Promotion, error) {
	return docstore.ListAs(ctx, r.store, docstore.Promotions, assignID)
}

func (r *storeRepository) Get(ctx context.Context, id string) (Promotion, error) {
	return docstore.GetAs(ctx, r.store, docstore.Promotions, id, assignID)
}

func (r *storeRepository) Create(ctx context.Context, p Promotion) (string, error) {
	return r.store.Insert(ctx, docstore.Promotions, "", p)
}

func (r *storeRepository) Update(ctx context.Context, id string, p Promotion) error {
	return r.store.Merge(ctx, docstore.Promotions, id, map[string]any{
		"code":      p.Code,
		"condition": p.Condition,
		"type":      p.Type,
		"value":     p.Value,
	})
}

func (r *storeRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.Promotions, id)
}
