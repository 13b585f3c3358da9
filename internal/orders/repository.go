package orders

import (
	"context"

	"github.com/newhope/newhope-admin/internal/docstore"
)

// Repository reads and updates orders.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	UpdateState(ctx context.Context, id string, state Status) error
}

// StoreRepository keeps orders in the Appointments collection.
type StoreRepository struct {
	store docstore.Store
}

// NewRepository constructs a StoreRepository.
func NewRepository(store docstore.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

func assignID(id string, o *Order) { o.ID = id }

// List returns all decodable orders. A *docstore.DecodeError accompanies
// the result when some documents were skipped.
func (r *StoreRepository) List(ctx context.Context) ([]Order, error) {
	return docstore.ListAs(ctx, r.store, docstore.Orders, assignID)
}

func (r *StoreRepository) Get(ctx context.Context, id string) (Order, error) {
	return docstore.GetAs(ctx, r.store, docstore.Orders, id, assignID)
}

// UpdateState writes only the state field. Concurrent edits are last writer wins.
func (r *StoreRepository) UpdateState(ctx context.Context, id string, state Status) error {
	return r.store.Merge(ctx, docstore.Orders, id, map[string]any{"state": string(state)})
}

var _ Repository = (*StoreRepository)(nil)
