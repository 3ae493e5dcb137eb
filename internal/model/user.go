package model

import (
	"fmt"
	"strings"
	"time"
)

// Role gates which endpoint set a user may call.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleOrganization Role = "organization"
	RoleDonor        Role = "donor"
)

// ParseRole normalizes free-form role input to a known role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOrganization:
		return RoleOrganization, nil
	case RoleDonor:
		return RoleDonor, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (p RegisterRequest) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if p.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if _, err := ParseRole(p.Role); err != nil {
		return err
	}
	return nil
}

type LoginRequest struct {
	Email    string
	Password string
	Role     string
}

func (p LoginRequest) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if p.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if strings.TrimSpace(p.Role) == "" {
		return fmt.Errorf("%w: role is required", ErrValidation)
	}
	return nil
}

// Session is the explicit per-request identity passed to every service
// call. Handlers resolve it from the bearer token, nothing reads it
// from ambient state.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}
