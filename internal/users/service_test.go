package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/shared"
)

type facilityChoices []shared.Choice

func (f facilityChoices) Choices(context.Context) ([]shared.Choice, error) { return f, nil }

func newTestService(t *testing.T) (*Service, docstore.Store) {
	t.Helper()
	store := docstore.NewMemoryStore()
	svc := NewService(NewRepository(store), facilityChoices{{Value: "Quận 1", Label: "Quận 1"}}, nil, nil)
	svc.hashCost = bcrypt.MinCost
	return svc, store
}

func TestListHidesAdmins(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := store.Insert(ctx, docstore.Users, "admin@newhope.vn", map[string]any{"fullName": "Admin", "role": "admin"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, docstore.Users, "an@gmail.com", map[string]any{"fullName": "An", "email": "an@gmail.com"})
	require.NoError(t, err)

	list, err := svc.ListUsers(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shared.RoleCustomer, list[0].DisplayRole())

	_, err = svc.Get(ctx, "admin@newhope.vn")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "admin@newhope.vn"), shared.ErrNotFound)
}

func TestCreateRules(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Form{FullName: "Bình", Email: "binh@gmail.com", Password: "secret1", Role: "staff"})
	var errs shared.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "base")

	_, err = svc.Create(ctx, Form{FullName: "Bình", Email: "binh@gmail.com", Password: "secret1", Role: "staff", Base: "Quận 9"})
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "base")

	_, err = svc.Create(ctx, Form{FullName: "Bình", Email: "binh@gmail.com", Password: "secret1", Role: "admin"})
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "role")

	_, err = svc.Create(ctx, Form{FullName: "Bình", Email: "binh@gmail.com", Role: "customer"})
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "password")

	u, err := svc.Create(ctx, Form{FullName: "Bình", Email: " Binh@Gmail.com ", Password: "secret1", Role: "staff", Base: "Quận 1"})
	require.NoError(t, err)
	assert.Equal(t, "binh@gmail.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	stored, err := NewRepository(store).Get(ctx, "binh@gmail.com")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	_, err = svc.Create(ctx, Form{FullName: "Khác", Email: "binh@gmail.com", Password: "secret2", Role: "customer"})
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "email")
}

func TestUpdateKeepsPasswordWhenBlank(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, Form{FullName: "Chi", Email: "chi@gmail.com", Password: "secret1", Role: "staff", Base: "Quận 1"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, "chi@gmail.com", Form{FullName: "Chi Nguyễn", Email: "ignored@gmail.com", Role: "customer", Base: "Quận 1"}))

	stored, err := NewRepository(store).Get(ctx, "chi@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "Chi Nguyễn", stored.FullName)
	assert.Equal(t, "customer", stored.Role)
	assert.Empty(t, stored.Base, "customers carry no facility")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}
