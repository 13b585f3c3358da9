package promotions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/shared"
)

// Service implements the promotion screen and the evaluate endpoint.
type Service struct {
	repo        Repository
	validate    *validator.Validate
	invalidator shared.ReportInvalidator
	logger      *slog.Logger
}

// NewService wires the promotion service. Writes invalidate reports since
// the dashboard counts promotions.
func NewService(repo Repository, invalidator shared.ReportInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if invalidator == nil {
		invalidator = shared.NopInvalidator{}
	}
	return &Service{repo: repo, validate: shared.NewValidator(), invalidator: invalidator, logger: logger}
}

func (s *Service) invalidate(ctx context.Context, reason string) {
	if err := s.invalidator.InvalidateReports(ctx, reason); err != nil {
		s.logger.Warn("invalidate reports", slog.Any("error", err), slog.String("reason", reason))
	}
}

// List returns promotions ordered by code.
func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		if !docstore.IsMalformed(err) {
			return nil, fmt.Errorf("promotions: list: %w", err)
		}
		s.logger.Warn("skipped malformed promotions", slog.Any("error", err))
	}
	sort.SliceStable(promos, func(i, j int) bool {
		return strings.ToLower(promos[i].Code) < strings.ToLower(promos[j].Code)
	})
	return promos, nil
}

// Get loads one promotion.
func (s *Service) Get(ctx context.Context, id string) (Promotion, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return Promotion{}, fmt.Errorf("promotion %s: %w", id, shared.ErrNotFound)
	}
	return p, err
}

// Create validates the form and stores a new promotion. Codes are unique
// ignoring case.
func (s *Service) Create(ctx context.Context, form Form) (Promotion, error) {
	if errs := ValidateForm(s.validate, form); len(errs) > 0 {
		return Promotion{}, errs
	}
	p := form.Promotion()
	if err := s.ensureUniqueCode(ctx, "", p.Code); err != nil {
		return Promotion{}, err
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Promotion{}, fmt.Errorf("promotions: create: %w", err)
	}
	p.ID = id
	s.invalidate(ctx, "promotions.create")
	return p, nil
}

// Update replaces an existing promotion.
func (s *Service) Update(ctx context.Context, id string, form Form) error {
	if errs := ValidateForm(s.validate, form); len(errs) > 0 {
		return errs
	}
	p := form.Promotion()
	if err := s.ensureUniqueCode(ctx, id, p.Code); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, p); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("promotion %s: %w", id, shared.ErrNotFound)
		}
		return fmt.Errorf("promotions: update: %w", err)
	}
	s.invalidate(ctx, "promotions.update")
	return nil
}

// Delete removes a promotion.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("promotions: delete: %w", err)
	}
	s.invalidate(ctx, "promotions.delete")
	return nil
}

func (s *Service) ensureUniqueCode(ctx context.Context, selfID, code string) error {
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.ID != selfID && strings.EqualFold(p.Code, code) {
			return shared.ValidationErrors{"code": "mã khuyến mãi đã tồn tại"}
		}
	}
	return nil
}

// EvaluateRequest asks for the discount of an order.
type EvaluateRequest struct {
	Code       string          `json:"code"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	ProductIDs []string        `json:"productIds"`
}

// EvaluateResult is the response of Evaluate.
type EvaluateResult struct {
	Code     string          `json:"code,omitempty"`
	Applies  bool            `json:"applies"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Evaluate applies the named promotion, or the best applicable one when no
// code is given. Unknown codes return shared.ErrNotFound.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateResult, error) {
	promos, err := s.List(ctx)
	if err != nil {
		return EvaluateResult{}, err
	}
	subtotal := req.Subtotal
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	result := EvaluateResult{Discount: decimal.Zero, Total: subtotal}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		best, eval, ok := BestFor(promos, subtotal, req.ProductIDs)
		if ok {
			result.Code, result.Applies, result.Discount = best.Code, true, eval.Amount
			result.Total = subtotal.Sub(eval.Amount)
		}
		return result, nil
	}

	for _, p := range promos {
		if !strings.EqualFold(p.Code, code) {
			continue
		}
		eval, err := Evaluate(p, subtotal, req.ProductIDs)
		if err != nil {
			return EvaluateResult{}, err
		}
		result.Code, result.Applies, result.Discount = p.Code, eval.Applies, eval.Amount
		result.Total = subtotal.Sub(eval.Amount)
		return result, nil
	}
	return EvaluateResult{}, fmt.Errorf("promotion code %q: %w", code, shared.ErrNotFound)
}
