package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/newhope/newhope-admin/internal/docstore"
	mdshared "github.com/newhope/newhope-admin/internal/masterdata/shared"
	"github.com/newhope/newhope-admin/internal/shared"
)

type Service struct {
	repo        Repository
	categories  shared.ChoiceSource
	validator   *validator.Validate
	invalidator shared.ReportInvalidator
	logger      *slog.Logger
}

// NewService wires the product service. categories, when set, restricts the
// type field to known category labels.
func NewService(repo Repository, categories shared.ChoiceSource, invalidator shared.ReportInvalidator, logger *slog.Logger) *Service {
	if invalidator == nil {
		invalidator = shared.NopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, categories: categories, validator: shared.NewValidator(), invalidator: invalidator, logger: logger}
}

// List returns products sorted by title.
func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		if !docstore.IsMalformed(err) {
			return nil, fmt.Errorf("products: list: %w", err)
		}
		s.logger.Warn("skipped malformed products", slog.Any("error", err))
	}
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if filters.Matches(p.Title, p.Type) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out, nil
}

// Choices feeds selects that reference a product by id.
func (s *Service) Choices(ctx context.Context) ([]shared.Choice, error) {
	all, err := s.List(ctx, mdshared.ListFilters{})
	if err != nil {
		return nil, err
	}
	out := make([]shared.Choice, 0, len(all))
	for _, p := range all {
		out = append(out, shared.Choice{Value: p.ID, Label: p.Title})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return Product{}, fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	return p, err
}

// Create stores a new product created by the given admin.
func (s *Service) Create(ctx context.Context, form ProductForm, createdBy string) (Product, error) {
	errs, err := s.validate(ctx, form)
	if err != nil {
		return Product{}, err
	}
	if len(errs) > 0 {
		return Product{}, errs
	}
	p := form.product()
	p.Create = createdBy
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, fmt.Errorf("products: create: %w", err)
	}
	p.ID = id
	s.invalidate(ctx, "products.create")
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, form ProductForm) error {
	errs, err := s.validate(ctx, form)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	if err := s.repo.Update(ctx, id, form.product()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
		}
		return fmt.Errorf("products: update: %w", err)
	}
	s.invalidate(ctx, "products.update")
	return nil
}

// Delete removes the product together with its options. Either both go or
// neither does.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("products: delete %s: %w", id, err)
	}
	s.invalidate(ctx, "products.delete")
	return nil
}

func (s *Service) Options(ctx context.Context, productID string) ([]Option, error) {
	opts, err := s.repo.ListOptions(ctx, productID)
	if err != nil && !docstore.IsMalformed(err) {
		return nil, fmt.Errorf("products: list options: %w", err)
	}
	return opts, nil
}

func (s *Service) AddOption(ctx context.Context, productID string, form OptionForm) (Option, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return Option{}, err
	}
	if errs := s.validateOption(form); len(errs) > 0 {
		return Option{}, errs
	}
	o := form.option()
	id, err := s.repo.AddOption(ctx, productID, o)
	if err != nil {
		return Option{}, fmt.Errorf("products: add option: %w", err)
	}
	o.ID = id
	return o, nil
}

func (s *Service) UpdateOption(ctx context.Context, productID, optionID string, form OptionForm) error {
	if errs := s.validateOption(form); len(errs) > 0 {
		return errs
	}
	if err := s.repo.UpdateOption(ctx, productID, optionID, form.option()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("option %s: %w", optionID, shared.ErrNotFound)
		}
		return fmt.Errorf("products: update option: %w", err)
	}
	return nil
}

func (s *Service) DeleteOption(ctx context.Context, productID, optionID string) error {
	if err := s.repo.DeleteOption(ctx, productID, optionID); err != nil {
		return fmt.Errorf("products: delete option: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, reason string) {
	if err := s.invalidator.InvalidateReports(ctx, reason); err != nil {
		s.logger.Warn("invalidate reports", slog.Any("error", err), slog.String("reason", reason))
	}
}
