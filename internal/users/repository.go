package users

import (
	"context"

	"github.com/newhope/newhope-admin/internal/docstore"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	Get(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, email string, fields map[string]any) error
	Delete(ctx context.Context, email string) error
}

// Repository keeps users in the USERS collection.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func assignEmail(id string, u *User) {
	if u.Email == "" {
		u.Email = id
	}
}

// ListUsers returns all decodable users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	return docstore.ListAs(ctx, r.store, docstore.Users, assignEmail)
}

func (r *Repository) Get(ctx context.Context, email string) (User, error) {
	return docstore.GetAs(ctx, r.store, docstore.Users, email, assignEmail)
}

// Create fails with docstore.ErrDuplicate when the email is taken.
func (r *Repository) Create(ctx context.Context, user User) error {
	_, err := r.store.Insert(ctx, docstore.Users, user.Email, user)
	return err
}

func (r *Repository) Update(ctx context.Context, email string, fields map[string]any) error {
	return r.store.Merge(ctx, docstore.Users, email, fields)
}

func (r *Repository) Delete(ctx context.Context, email string) error {
	return r.store.Delete(ctx, docstore.Users, email)
}

var _ RepositoryPort = (*Repository)(nil)
