package categories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newhope/newhope-admin/internal/docstore"
)

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id string) (Category, error)
	Create(ctx context.Context, category Category) (string, error)
	// Rename changes the label and moves products from the old label in one
	// transaction. It returns the number of products moved.
	Rename(ctx context.Context, id, from, to string) (int, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func assignID(id string, c *Category) { c.ID = id }

func (r *repository) List(ctx context.Context) ([]Category, error) {
	return docstore.ListAs(ctx, r.store, docstore.Categories, assignID)
}

func (r *repository) Get(ctx context.Context, id string) (Category, error) {
	return docstore.GetAs(ctx, r.store, docstore.Categories, id, assignID)
}

func (r *repository) Create(ctx context.Context, category Category) (string, error) {
	return r.store.Insert(ctx, docstore.Categories, "", category)
}

func (r *repository) Rename(ctx context.Context, id, from, to string) (int, error) {
	moved := 0
	err := r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Store) error {
		moved = 0
		if err := tx.Merge(ctx, docstore.Categories, id, map[string]any{"type": to}); err != nil {
			return err
		}
		if from == to {
			return nil
		}
		docs, err := tx.List(ctx, docstore.Products)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			var p struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(doc.Data, &p) != nil || strings.TrimSpace(p.Type) != from {
				continue
			}
			if err := tx.Merge(ctx, docstore.Products, doc.ID, map[string]any{"type": to}); err != nil {
				return fmt.Errorf("move product %s: %w", doc.ID, err)
			}
			moved++
		}
		return nil
	})
	return moved, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.Categories, id)
}
