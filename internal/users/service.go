package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/shared"
)

// ListFilter narrows the user table.
type ListFilter struct {
	Role   string
	Search string
}

// Service handles user business logic. Administrator accounts are never
// listed or editable here.
type Service struct {
	repo        RepositoryPort
	facilities  shared.ChoiceSource
	validator   *validator.Validate
	invalidator shared.ReportInvalidator
	logger      *slog.Logger
	hashCost    int
}

// NewService builds Service instance. facilities, when set, restricts the
// base field of staff accounts to known facility names.
func NewService(repo RepositoryPort, facilities shared.ChoiceSource, invalidator shared.ReportInvalidator, logger *slog.Logger) *Service {
	if invalidator == nil {
		invalidator = shared.NopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		facilities:  facilities,
		validator:   shared.NewValidator(),
		invalidator: invalidator,
		logger:      logger,
		hashCost:    bcrypt.DefaultCost,
	}
}

// ListUsers returns customers and staff sorted by name.
func (s *Service) ListUsers(ctx context.Context, filter ListFilter) ([]User, error) {
	all, err := s.repo.ListUsers(ctx)
	if err != nil {
		if !docstore.IsMalformed(err) {
			return nil, fmt.Errorf("users: list: %w", err)
		}
		s.logger.Warn("skipped malformed users", slog.Any("error", err))
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]User, 0, len(all))
	for _, u := range all {
		role := u.DisplayRole()
		if role == shared.RoleAdmin {
			continue
		}
		if filter.Role != "" && role != filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.FullName+" "+u.Email+" "+u.Phone), search) {
			continue
		}
		u.PasswordHash = ""
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
	})
	return out, nil
}

// Get loads an editable user.
func (s *Service) Get(ctx context.Context, email string) (User, error) {
	email = normalizeEmail(email)
	u, err := s.repo.Get(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) || (err == nil && u.DisplayRole() == shared.RoleAdmin) {
		return User{}, fmt.Errorf("user %s: %w", email, shared.ErrNotFound)
	}
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *Service) validate(ctx context.Context, form Form, creating bool) (shared.ValidationErrors, error) {
	errs := shared.ValidateStruct(s.validator, form)
	if creating && form.Password == "" {
		errs.Add("password", "bắt buộc")
	}
	if form.Role == shared.RoleStaff && form.Base != "" && s.facilities != nil {
		choices, err := s.facilities.Choices(ctx)
		if err != nil {
			return nil, err
		}
		if !hasChoice(choices, form.Base) {
			errs.Add("base", "cơ sở không tồn tại")
		}
	}
	return errs, nil
}

func hasChoice(choices []shared.Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

func trimForm(form Form) Form {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = normalizeEmail(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Address = strings.TrimSpace(form.Address)
	form.Base = strings.TrimSpace(form.Base)
	if form.Role != shared.RoleStaff {
		form.Base = ""
	}
	return form
}

// Create registers a customer or staff account. Emails are unique.
func (s *Service) Create(ctx context.Context, form Form) (User, error) {
	form = trimForm(form)
	errs, err := s.validate(ctx, form, true)
	if err != nil {
		return User{}, err
	}
	if len(errs) > 0 {
		return User{}, errs
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	u := User{
		Email:        form.Email,
		FullName:     form.FullName,
		Phone:        form.Phone,
		Address:      form.Address,
		Role:         form.Role,
		Base:         form.Base,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return User{}, shared.ValidationErrors{"email": "Email này đã được sử dụng"}
		}
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	s.invalidate(ctx, "users.create")
	u.PasswordHash = ""
	return u, nil
}

// Update edits an existing account. The email is the document id and
// cannot change; a blank password keeps the current one.
func (s *Service) Update(ctx context.Context, email string, form Form) error {
	current, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	form.Email = current.Email
	form = trimForm(form)
	errs, err := s.validate(ctx, form, false)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	fields := map[string]any{
		"fullName": form.FullName,
		"phone":    form.Phone,
		"address":  form.Address,
		"role":     form.Role,
		"base":     form.Base,
	}
	if form.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.hashCost)
		if err != nil {
			return fmt.Errorf("users: hash password: %w", err)
		}
		fields["passwordHash"] = string(hash)
	}
	if err := s.repo.Update(ctx, current.Email, fields); err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	return nil
}

// Delete removes a customer or staff account.
func (s *Service) Delete(ctx context.Context, email string) error {
	current, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.Email); err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	s.invalidate(ctx, "users.delete")
	return nil
}

func (s *Service) invalidate(ctx context.Context, reason string) {
	if err := s.invalidator.InvalidateReports(ctx, reason); err != nil {
		s.logger.Warn("invalidate reports", slog.Any("error", err), slog.String("reason", reason))
	}
}
