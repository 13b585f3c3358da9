package users

import (
	"strings"

	"github.com/newhope/newhope-admin/internal/shared"
)

// User is a USERS document. The document id is the email address.
type User struct {
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Role         string `json:"role"`
	Base         string `json:"base,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// DisplayRole returns the stored role, treating blanks as customers.
func (u User) DisplayRole() string {
	if r := strings.TrimSpace(u.Role); r != "" {
		return r
	}
	return shared.RoleCustomer
}

// RoleLabel is the Vietnamese role name.
func (u User) RoleLabel() string {
	switch u.DisplayRole() {
	case shared.RoleAdmin:
		return "Quản trị viên"
	case shared.RoleStaff:
		return "Nhân viên"
	default:
		return "Khách hàng"
	}
}

// Form is the user editor payload. Password is required on create and
// optional on edit, where a blank value keeps the current one.
type Form struct {
	FullName string `form:"fullName" validate:"required,max=120"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"omitempty,min=6,max=72"`
	Phone    string `form:"phone" validate:"omitempty,numeric,min=9,max=12"`
	Address  string `form:"address" validate:"max=300"`
	Role     string `form:"role" validate:"required,oneof=customer staff"`
	Base     string `form:"base" validate:"required_if=Role staff"`
}

func formFrom(u User) Form {
	return Form{FullName: u.FullName, Email: u.Email, Phone: u.Phone, Address: u.Address, Role: u.DisplayRole(), Base: u.Base}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
