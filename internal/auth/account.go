package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/shared"
)

// Account is the slice of a USERS document needed to sign in.
type Account struct {
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	PasswordHash string `json:"passwordHash"`
}

// Repository looks up accounts by email.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
}

// StoreRepository reads accounts from the USERS collection.
type StoreRepository struct {
	store docstore.Store
}

// NewRepository constructs a StoreRepository.
func NewRepository(store docstore.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

// FindByEmail returns shared.ErrNotFound for unknown emails.
func (r *StoreRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acc, err := docstore.GetAs(ctx, r.store, docstore.Users, email, func(id string, a *Account) {
		if a.Email == "" {
			a.Email = id
		}
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return Account{}, shared.ErrNotFound
	}
	return acc, err
}

var _ Repository = (*StoreRepository)(nil)
