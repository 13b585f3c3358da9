package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/newhope/newhope-admin/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Only administrators may
// operate the dashboard; any other valid account yields shared.ErrNotAdmin.
func (s *Service) Authenticate(ctx context.Context, email, password string) (shared.AuthContext, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.AuthContext{}, shared.ErrInvalidCredentials
		}
		return shared.AuthContext{}, err
	}
	if acc.PasswordHash == "" {
		return shared.AuthContext{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return shared.AuthContext{}, shared.ErrInvalidCredentials
	}
	if acc.Role != shared.RoleAdmin {
		return shared.AuthContext{}, shared.ErrNotAdmin
	}
	return shared.AuthContext{UserID: acc.Email, Email: acc.Email, Role: acc.Role}, nil
}
