package domain

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
)

// Role is the closed set of caller roles. The zero value is not a valid role.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleTechnician
	RoleAdmin
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "CUSTOMER"
	case RoleTechnician:
		return "TECHNICIAN"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether r is one of the three defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole accepts the wire name with or without the legacy "ROLE_" prefix.
func ParseRole(s string) (Role, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_")
	switch name {
	case "CUSTOMER":
		return RoleCustomer, nil
	case "TECHNICIAN":
		return RoleTechnician, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return RoleUnknown, apperrors.ErrInvalidRole
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// HasRole reports whether the caller holds any of the given roles.
func (c *Caller) HasRole(roles ...Role) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
