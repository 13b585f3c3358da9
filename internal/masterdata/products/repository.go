package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/newhope/newhope-admin/internal/docstore"
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, product Product) (string, error)
	Update(ctx context.Context, id string, product Product) error
	// Delete removes the product and its options atomically.
	Delete(ctx context.Context, id string) error
	ListOptions(ctx context.Context, productID string) ([]Option, error)
	AddOption(ctx context.Context, productID string, option Option) (string, error)
	UpdateOption(ctx context.Context, productID, optionID string, option Option) error
	DeleteOption(ctx context.Context, productID, optionID string) error
}

type repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func assignID(id string, p *Product) { p.ID = id }

func assignOptionID(id string, o *Option) { o.ID = id }

func (r *repository) List(ctx context.Context) ([]Product, error) {
	return docstore.ListAs(ctx, r.store, docstore.Products, assignID)
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	return docstore.GetAs(ctx, r.store, docstore.Products, id, assignID)
}

// Create stores the generated id inside the document as well, as the
// ordering front-end expects.
func (r *repository) Create(ctx context.Context, product Product) (string, error) {
	product.ID = uuid.NewString()
	return r.store.Insert(ctx, docstore.Products, product.ID, product)
}

func (r *repository) Update(ctx context.Context, id string, product Product) error {
	return r.store.Merge(ctx, docstore.Products, id, map[string]any{
		"title": product.Title,
		"price": product.Price,
		"image": product.Image,
		"type":  product.Type,
	})
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Store) error {
		if _, err := tx.DeleteCollection(ctx, docstore.ProductOptions(id)); err != nil {
			return fmt.Errorf("delete options: %w", err)
		}
		return tx.Delete(ctx, docstore.Products, id)
	})
}

func (r *repository) ListOptions(ctx context.Context, productID string) ([]Option, error) {
	return docstore.ListAs(ctx, r.store, docstore.ProductOptions(productID), assignOptionID)
}

func (r *repository) AddOption(ctx context.Context, productID string, option Option) (string, error) {
	return r.store.Insert(ctx, docstore.ProductOptions(productID), "", option)
}

func (r *repository) UpdateOption(ctx context.Context, productID, optionID string, option Option) error {
	return r.store.Merge(ctx, docstore.ProductOptions(productID), optionID, map[string]any{
		"OptionName": option.OptionName,
		"Price":      option.Price,
	})
}

func (r *repository) DeleteOption(ctx context.Context, productID, optionID string) error {
	return r.store.Delete(ctx, docstore.ProductOptions(productID), optionID)
}
