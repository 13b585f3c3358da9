package promotions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/promotions"
	"github.com/newhope/newhope-admin/internal/shared"
)

func newService() *promotions.Service {
	return promotions.NewService(promotions.NewRepository(docstore.NewMemoryStore()), nil, nil)
}

func TestCreateRejectsInvalidForms(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, promotions.Form{Code: "P150", Type: "*", Value: "150", Total: "100000"})
	var verrs shared.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "value")

	_, err = svc.Create(ctx, promotions.Form{Code: "NOCOND", Type: "-", Value: "10000"})
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "condition")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.Create(ctx, promotions.Form{Code: "SALE", Type: "*", Value: "10", Total: "1000"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, promotions.Form{Code: "sale", Type: "-", Value: "5000", Total: "1000"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestServiceEvaluate(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	created, err := svc.Create(ctx, promotions.Form{Code: "FLAT", Type: "-", Value: "500000", Total: "50000"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	_, err = svc.Create(ctx, promotions.Form{Code: "PHO10", Type: "*", Value: "10", Product: "pho"})
	require.NoError(t, err)

	res, err := svc.Evaluate(ctx, promotions.EvaluateRequest{Code: "flat", Subtotal: decimal.NewFromInt(100000)})
	require.NoError(t, err)
	assert.True(t, res.Applies)
	assert.Equal(t, "100000", res.Discount.String())
	assert.True(t, res.Total.IsZero())

	res, err = svc.Evaluate(ctx, promotions.EvaluateRequest{Subtotal: decimal.NewFromInt(40000), ProductIDs: []string{"pho"}})
	require.NoError(t, err)
	assert.Equal(t, "PHO10", res.Code)
	assert.Equal(t, "4000", res.Discount.String())
	assert.Equal(t, "36000", res.Total.String())

	_, err = svc.Evaluate(ctx, promotions.EvaluateRequest{Code: "NOPE", Subtotal: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	p, err := svc.Create(ctx, promotions.Form{Code: "A", Type: "*", Value: "5", Total: "1000"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, p.ID, promotions.Form{Code: "A", Type: "-", Value: "2000", Product: "x"}))
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, promotions.KindFlat, got.Type)
	assert.False(t, got.Condition.HasTotal())
	assert.Equal(t, "x", got.Condition.Product)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, p.ID, promotions.Form{Code: "A", Type: "-", Value: "1", Product: "x"}), shared.ErrNotFound)
}
