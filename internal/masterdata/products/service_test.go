package products

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhope/newhope-admin/internal/docstore"
	mdshared "github.com/newhope/newhope-admin/internal/masterdata/shared"
	"github.com/newhope/newhope-admin/internal/shared"
)

type staticChoices []shared.Choice

func (s staticChoices) Choices(context.Context) ([]shared.Choice, error) { return s, nil }

type failingStore struct {
	docstore.Store
	failProductDelete bool
}

func (f *failingStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx docstore.Store) error) error {
	return f.Store.WithTx(ctx, func(ctx context.Context, tx docstore.Store) error {
		return fn(ctx, &failingTx{Store: tx, fail: f.failProductDelete})
	})
}

type failingTx struct {
	docstore.Store
	fail bool
}

func (f *failingTx) Delete(ctx context.Context, collection, id string) error {
	if f.fail && collection == docstore.Products {
		return errors.New("connection reset")
	}
	return f.Store.Delete(ctx, collection, id)
}

func newService(store docstore.Store) *Service {
	cats := staticChoices{{Value: "Phở", Label: "Phở"}, {Value: "Cơm", Label: "Cơm"}}
	return NewService(NewRepository(store), cats, nil, nil)
}

func TestCreateValidatesCategoryAndPrice(t *testing.T) {
	svc := newService(docstore.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductForm{Title: "Phở gà", Price: "45000", Type: "Bún"}, "admin@newhope.vn")
	var errs shared.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "type")

	_, err = svc.Create(ctx, ProductForm{Title: "Phở gà", Price: "-1", Type: "Phở"}, "admin@newhope.vn")
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "price")

	p, err := svc.Create(ctx, ProductForm{Title: "Phở gà", Price: "45000", Type: "Phở", Image: "https://cdn.newhope.vn/pho.jpg"}, "admin@newhope.vn")
	require.NoError(t, err)
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "admin@newhope.vn", got.Create)
	assert.Equal(t, "45000", got.Price.String())
}

func TestDeleteRemovesOptionsAtomically(t *testing.T) {
	mem := docstore.NewMemoryStore()
	store := &failingStore{Store: mem, failProductDelete: true}
	svc := newService(store)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductForm{Title: "Cơm tấm", Price: "40000", Type: "Cơm"}, "")
	require.NoError(t, err)
	_, err = svc.AddOption(ctx, p.ID, OptionForm{OptionName: "Thêm sườn", Price: "15000"})
	require.NoError(t, err)
	_, err = svc.AddOption(ctx, p.ID, OptionForm{OptionName: "Thêm trứng", Price: "5000"})
	require.NoError(t, err)

	require.Error(t, svc.Delete(ctx, p.ID))
	opts, err := svc.Options(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, opts, 2, "failed delete must keep the options")

	store.failProductDelete = false
	require.NoError(t, svc.Delete(ctx, p.ID))
	opts, err = svc.Options(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, opts)
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOptionsLifecycle(t *testing.T) {
	svc := newService(docstore.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.AddOption(ctx, "missing", OptionForm{OptionName: "X", Price: "1"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	p, err := svc.Create(ctx, ProductForm{Title: "Phở bò", Price: "50000", Type: "Phở"}, "")
	require.NoError(t, err)
	o, err := svc.AddOption(ctx, p.ID, OptionForm{OptionName: "Tái", Price: "0"})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateOption(ctx, p.ID, o.ID, OptionForm{OptionName: "Tái lăn", Price: "5000"}))

	opts, err := svc.Options(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Tái lăn", opts[0].OptionName)
	assert.Equal(t, "5000", opts[0].Price.String())

	require.NoError(t, svc.DeleteOption(ctx, p.ID, o.ID))
	opts, err = svc.Options(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestListSearchAndChoices(t *testing.T) {
	svc := newService(docstore.NewMemoryStore())
	ctx := context.Background()
	for _, title := range []string{"Phở bò", "Cơm gà", "Phở gà"} {
		typ := "Phở"
		if title == "Cơm gà" {
			typ = "Cơm"
		}
		_, err := svc.Create(ctx, ProductForm{Title: title, Price: "1000", Type: typ}, "")
		require.NoError(t, err)
	}
	list, err := svc.List(ctx, mdshared.ListFilters{Search: "phở"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Phở bò", list[0].Title)

	choices, err := svc.Choices(ctx)
	require.NoError(t, err)
	require.Len(t, choices, 3)
	assert.Equal(t, "Cơm gà", choices[0].Label)
}
