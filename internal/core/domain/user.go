package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MaxEmailLength    = 255
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Caller returns the identity used for authorization decisions.
func (u *User) Caller() *Caller {
	return &Caller{ID: u.ID, Email: u.Email, Role: u.Role}
}

// UserParams holds the fields of a new user.
type UserParams struct {
	Email    string
	Password string
	Role     string
}

// Validate collects every problem with the params.
func (p UserParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	validateEmail(errs, p.Email)
	if p.Password == "" {
		errs.Add("password", "Password no information")
	} else {
		validatePassword(errs, p.Password)
	}
	if _, err := ParseRole(p.Role); err != nil {
		errs.Add("role", "Role must be one of: CUSTOMER, TECHNICIAN, ADMIN")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// UserUpdate holds the fields of an update request. An empty password keeps
// the stored hash; an empty role keeps the stored role.
type UserUpdate struct {
	ID       uuid.UUID
	Email    string
	Password string
	Role     string
}

func (u UserUpdate) Validate() error {
	errs := apperrors.NewValidationErrors()

	if u.ID == uuid.Nil {
		errs.Add("id", "Id no information")
	}
	validateEmail(errs, u.Email)
	if u.Password != "" {
		validatePassword(errs, u.Password)
	}
	if u.Role != "" {
		if _, err := ParseRole(u.Role); err != nil {
			errs.Add("role", "Role must be one of: CUSTOMER, TECHNICIAN, ADMIN")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateEmail(errs *apperrors.ValidationErrors, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs.Add("email", "Email no information")
	case len(email) > MaxEmailLength:
		errs.Add("email", "Email must be 255 characters or less")
	case !isValidEmail(email):
		errs.Add("email", "Invalid email format")
	}
}

// bcrypt ignores input past 72 bytes.
func validatePassword(errs *apperrors.ValidationErrors, password string) {
	if len(password) < MinPasswordLength {
		errs.Add("password", "Password must be at least 8 characters long")
	}
	if len(password) > MaxPasswordLength {
		errs.Add("password", "Password must be 72 characters or less")
	}
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// NormalizeEmail lowercases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
