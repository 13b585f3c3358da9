package facilities

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newhope/newhope-admin/internal/docstore"
)

type Repository interface {
	List(ctx context.Context) ([]Facility, error)
	Get(ctx context.Context, id string) (Facility, error)
	Create(ctx context.Context, facility Facility) (string, error)
	// Update replaces the facility and, when the name changes, moves staff
	// accounts assigned to the old name in the same transaction.
	Update(ctx context.Context, id, previousName string, facility Facility) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) Repository {
	return &repository{store: store}
}

func assignID(id string, f *Facility) { f.ID = id }

func (r *repository) List(ctx context.Context) ([]Facility, error) {
	return docstore.ListAs(ctx, r.store, docstore.Facilities, assignID)
}

func (r *repository) Get(ctx context.Context, id string) (Facility, error) {
	return docstore.GetAs(ctx, r.store, docstore.Facilities, id, assignID)
}

func (r *repository) Create(ctx context.Context, facility Facility) (string, error) {
	return r.store.Insert(ctx, docstore.Facilities, "", facility)
}

func (r *repository) Update(ctx context.Context, id, previousName string, facility Facility) error {
	return r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Store) error {
		if err := tx.Merge(ctx, docstore.Facilities, id, map[string]any{
			"name":      facility.Name,
			"address":   facility.Address,
			"latitude":  facility.Latitude,
			"longitude": facility.Longitude,
		}); err != nil {
			return err
		}
		if previousName == facility.Name {
			return nil
		}
		users, err := tx.List(ctx, docstore.Users)
		if err != nil {
			return err
		}
		for _, doc := range users {
			var u struct {
				Base string `json:"base"`
			}
			if json.Unmarshal(doc.Data, &u) != nil || strings.TrimSpace(u.Base) != previousName {
				continue
			}
			if err := tx.Merge(ctx, docstore.Users, doc.ID, map[string]any{"base": facility.Name}); err != nil {
				return fmt.Errorf("reassign %s: %w", doc.ID, err)
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.Facilities, id)
}
