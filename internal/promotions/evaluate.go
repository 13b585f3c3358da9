package promotions

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// ErrInvalidPromotion is returned when a promotion that fails creation
// rules reaches evaluation.
var ErrInvalidPromotion = errors.New("promotions: invalid promotion")

// Evaluation is the outcome of applying one promotion to an order.
type Evaluation struct {
	Applies bool
	Amount  decimal.Decimal
}

// Evaluate decides whether p applies to an order with the given subtotal and
// product ids and computes the discount. It never mutates its inputs.
// A negative subtotal is treated as zero.
func Evaluate(p Promotion, subtotal decimal.Decimal, productIDs []string) (Evaluation, error) {
	if errs := Validate(p); len(errs) > 0 {
		return Evaluation{}, fmt.Errorf("%w: %w", ErrInvalidPromotion, errs)
	}
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	if !conditionsHold(p.Condition, subtotal, productIDs) {
		return Evaluation{Amount: decimal.Zero}, nil
	}

	var amount decimal.Decimal
	switch p.Type {
	case KindPercent:
		amount = subtotal.Mul(p.Value.Value).Div(hundred)
	case KindFlat:
		amount = decimal.Min(p.Value.Value, subtotal)
	}
	return Evaluation{Applies: true, Amount: amount}, nil
}

func conditionsHold(c Condition, subtotal decimal.Decimal, productIDs []string) bool {
	if c.HasTotal() && subtotal.LessThan(c.Total.Value) {
		return false
	}
	if c.HasProduct() && !slices.Contains(productIDs, c.Product) {
		return false
	}
	return true
}

// BestFor evaluates every promotion and returns the one granting the largest
// discount. Invalid promotions are skipped; on equal amounts the earlier one
// wins. ok is false when nothing applies.
func BestFor(promos []Promotion, subtotal decimal.Decimal, productIDs []string) (best Promotion, eval Evaluation, ok bool) {
	for _, p := range promos {
		e, err := Evaluate(p, subtotal, productIDs)
		if err != nil || !e.Applies {
			continue
		}
		if !ok || e.Amount.GreaterThan(eval.Amount) {
			best, eval, ok = p, e, true
		}
	}
	return best, eval, ok
}
