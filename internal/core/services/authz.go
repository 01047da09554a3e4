package services

import (
	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
)

// Permission names an action guarded by role.
type Permission string

const (
	PermTicketCreate       Permission = "tickets:create"
	PermTicketUpdate       Permission = "tickets:update"
	PermTicketRead         Permission = "tickets:read"
	PermTicketDelete       Permission = "tickets:delete"
	PermTicketChangeStatus Permission = "tickets:update:status"
	PermTicketAssign       Permission = "tickets:assign"
	PermUserManage         Permission = "users:manage"
)

var rolePermissions = map[domain.Role][]Permission{
	domain.RoleCustomer: {
		PermTicketCreate,
		PermTicketUpdate,
		PermTicketRead,
		PermTicketDelete,
		PermTicketChangeStatus,
	},
	domain.RoleTechnician: {
		PermTicketUpdate,
		PermTicketRead,
		PermTicketChangeStatus,
		PermTicketAssign,
	},
	domain.RoleAdmin: {
		PermTicketRead,
		PermUserManage,
	},
}

// Can reports whether the caller's role grants the permission.
func Can(caller *domain.Caller, permission Permission) bool {
	if caller == nil {
		return false
	}
	for _, p := range rolePermissions[caller.Role] {
		if p == permission {
			return true
		}
	}
	return false
}

func authorize(caller *domain.Caller, permission Permission) error {
	if err := authenticated(caller); err != nil {
		return err
	}
	if !Can(caller, permission) {
		return apperrors.ErrForbidden
	}
	return nil
}

// authenticated only requires a caller. Listing and search use it: the
// access policy decides the scope, and roles it does not know see an
// empty page rather than an error.
func authenticated(caller *domain.Caller) error {
	if caller == nil {
		return apperrors.ErrUnauthorized
	}
	return nil
}
