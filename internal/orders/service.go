package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/shared"
)

// ListFilter narrows the order table.
type ListFilter struct {
	Status string
	Search string
}

// Service implements order screen operations.
type Service struct {
	repo        Repository
	invalidator shared.ReportInvalidator
	logger      *slog.Logger
}

// NewService wires the order service.
func NewService(repo Repository, invalidator shared.ReportInvalidator, logger *slog.Logger) *Service {
	if invalidator == nil {
		invalidator = shared.NopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// List returns orders newest first. Malformed documents are logged and skipped.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		if !docstore.IsMalformed(err) {
			return nil, fmt.Errorf("orders: list: %w", err)
		}
		s.logger.Warn("skipped malformed orders", slog.Any("error", err))
	}

	status := strings.TrimSpace(filter.Status)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if status != "" {
			want, _ := ParseStatus(status)
			if FulfilledAliases.Resolve(o.DisplayState()) != FulfilledAliases.Resolve(want) {
				continue
			}
		}
		if search != "" && !o.matches(search) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Datetime, out[j].Datetime
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Time.After(b.Time)
	})
	return out, nil
}

func (o Order) matches(needle string) bool {
	for _, field := range []string{o.ID, o.TransactionID, o.FullName, o.Email, o.Phone} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Get loads a single order.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, shared.ErrNotFound
	}
	order, err := s.repo.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return Order{}, fmt.Errorf("order %s: %w", id, shared.ErrNotFound)
	}
	return order, err
}

// UpdateStatus moves an order to any state in Vocabulary. No transition
// graph is enforced.
func (s *Service) UpdateStatus(ctx context.Context, id, raw string) (Status, error) {
	status, ok := ParseStatus(raw)
	if !ok {
		return "", shared.ValidationErrors{"state": "trạng thái không hợp lệ"}
	}
	if err := s.repo.UpdateState(ctx, id, status); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", fmt.Errorf("order %s: %w", id, shared.ErrNotFound)
		}
		return "", fmt.Errorf("orders: update status: %w", err)
	}
	if err := s.invalidator.InvalidateReports(ctx, "orders.status"); err != nil {
		s.logger.Warn("invalidate reports", slog.Any("error", err), slog.String("order", id))
	}
	return status, nil
}
