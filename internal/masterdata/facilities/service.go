package facilities

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
	repo      Repository
	validator *validator.Validate
	logger    *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: shared.NewValidator(), logger: logger}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Facility, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		if !docstore.IsMalformed(err) {
			return nil, fmt.Errorf("facilities: list: %w", err)
		}
		s.logger.Warn("skipped malformed facilities", slog.Any("error", err))
	}
	out := make([]Facility, 0, len(all))
	for _, f := range all {
		if filters.Matches(f.Name, f.Address) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Choices feeds the staff facility select.
func (s *Service) Choices(ctx context.Context) ([]shared.Choice, error) {
	all, err := s.List(ctx, mdshared.ListFilters{})
	if err != nil {
		return nil, err
	}
	out := make([]shared.Choice, 0, len(all))
	for _, f := range all {
		out = append(out, shared.Choice{Value: f.Name, Label: f.Name})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Facility, error) {
	f, err := s.repo.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return Facility{}, fmt.Errorf("facility %s: %w", id, shared.ErrNotFound)
	}
	return f, err
}

func (s *Service) Create(ctx context.Context, form Form) (Facility, error) {
	if errs := shared.ValidateStruct(s.validator, form); len(errs) > 0 {
		return Facility{}, errs
	}
	f := form.facility()
	if err := s.ensureUnique(ctx, "", f.Name); err != nil {
		return Facility{}, err
	}
	id, err := s.repo.Create(ctx, f)
	if err != nil {
		return Facility{}, fmt.Errorf("facilities: create: %w", err)
	}
	f.ID = id
	return f, nil
}

func (s *Service) Update(ctx context.Context, id string, form Form) error {
	if errs := shared.ValidateStruct(s.validator, form); len(errs) > 0 {
		return errs
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	f := form.facility()
	if err := s.ensureUnique(ctx, id, f.Name); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, current.Name, f); err != nil {
		return fmt.Errorf("facilities: update: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("facilities: delete: %w", err)
	}
	return nil
}

func (s *Service) ensureUnique(ctx context.Context, selfID, name string) error {
	all, err := s.List(ctx, mdshared.ListFilters{})
	if err != nil {
		return err
	}
	for _, f := range all {
		if f.ID != selfID && strings.EqualFold(f.Name, name) {
			return shared.ValidationErrors{"name": "tên cơ sở đã tồn tại"}
		}
	}
	return nil
}
