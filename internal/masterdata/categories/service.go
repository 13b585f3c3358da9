package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/newhope/newhope-admin/internal/docstore"
	mdshared "github.com/newhope/newhope-admin/internal/masterdata/shared"
	"github.com/newhope/newhope-admin/internal/shared"
)

type Service struct {
	repo        Repository
	validator   *validator.Validate
	invalidator shared.ReportInvalidator
	logger      *slog.Logger
}

func NewService(repo Repository, invalidator shared.ReportInvalidator, logger *slog.Logger) *Service {
	if invalidator == nil {
		invalidator = shared.NopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: shared.NewValidator(), invalidator: invalidator, logger: logger}
}

// List returns categories in stored order, which is also the order of the
// category chart.
func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Category, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		if !docstore.IsMalformed(err) {
			return nil, fmt.Errorf("categories: list: %w", err)
		}
		s.logger.Warn("skipped malformed categories", slog.Any("error", err))
	}
	out := all[:0]
	for _, c := range all {
		if filters.Matches(c.Type) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Choices feeds the product form's category select.
func (s *Service) Choices(ctx context.Context) ([]shared.Choice, error) {
	all, err := s.List(ctx, mdshared.ListFilters{})
	if err != nil {
		return nil, err
	}
	out := make([]shared.Choice, 0, len(all))
	for _, c := range all {
		out = append(out, shared.Choice{Value: c.Type, Label: c.Type})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	c, err := s.repo.Get(ctx, id)
	if isNotFound(err) {
		return Category{}, fmt.Errorf("category %s: %w", id, shared.ErrNotFound)
	}
	return c, err
}

// Create stores a new category. Labels are unique ignoring case.
func (s *Service) Create(ctx context.Context, form Form) (Category, error) {
	if errs := s.validate(form); len(errs) > 0 {
		return Category{}, errs
	}
	c := Category{Type: strings.TrimSpace(form.Type)}
	if err := s.ensureUnique(ctx, "", c.Type); err != nil {
		return Category{}, err
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return Category{}, fmt.Errorf("categories: create: %w", err)
	}
	c.ID = id
	s.invalidate(ctx, "categories.create")
	return c, nil
}

// Update renames a category and carries its products along.
func (s *Service) Update(ctx context.Context, id string, form Form) error {
	if errs := s.validate(form); len(errs) > 0 {
		return errs
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	label := strings.TrimSpace(form.Type)
	if err := s.ensureUnique(ctx, id, label); err != nil {
		return err
	}
	moved, err := s.repo.Rename(ctx, id, current.Type, label)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("category %s: %w", id, shared.ErrNotFound)
		}
		return fmt.Errorf("categories: rename: %w", err)
	}
	s.logger.Info("category renamed", slog.String("id", id), slog.String("from", current.Type), slog.String("to", label), slog.Int("products", moved))
	s.invalidate(ctx, "categories.update")
	return nil
}

// Delete removes a category. Its products become unclassified.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("categories: delete: %w", err)
	}
	s.invalidate(ctx, "categories.delete")
	return nil
}

func (s *Service) ensureUnique(ctx context.Context, selfID, label string) error {
	all, err := s.List(ctx, mdshared.ListFilters{})
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.ID != selfID && strings.EqualFold(strings.TrimSpace(c.Type), label) {
			return shared.ValidationErrors{"type": "thể loại đã tồn tại"}
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, reason string) {
	if err := s.invalidator.InvalidateReports(ctx, reason); err != nil {
		s.logger.Warn("invalidate reports", slog.Any("error", err), slog.String("reason", reason))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}
