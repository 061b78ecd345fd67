package models

import (
	"net/mail"
	"strings"
	"time"

	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
)

// Role names the concrete record a user identity belongs to.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleCashier Role = "cashier"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleCashier:
		return true
	}
	return false
}

// User holds the fields every role shares. It is embedded by value in the
// concrete role records; there is no polymorphic behaviour behind it.
//
// Invariants:
//   - Active starts true at creation
//   - Active transitions true ↔ false only, via Activate/Deactivate
//   - Email is unique across all roles, compared case-insensitively
type User struct {
	ID        id.UserID `json:"id"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Employee adds the fields shared by staff roles.
type Employee struct {
	User
	HiredAt time.Time `json:"hired_at"`
}

func newUser(role Role, name, email, phone string, now time.Time) (User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return User{}, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if len(name) > 128 {
		return User{}, dErrors.New(dErrors.CodeInvariantViolation, "name must be 128 characters or less")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return User{}, dErrors.New(dErrors.CodeInvariantViolation, "email is invalid")
	}
	return User{
		Role:      role,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(phone),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeEmail is the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsActive() bool {
	return u.Active
}

// CanActivate rejects activating a user that is already active.
// Use with ApplyActivation in Execute callbacks.
func (u *User) CanActivate() error {
	if u.Active {
		return &InvalidTransitionError{Reason: "already active"}
	}
	return nil
}

// ApplyActivation marks the user active. Call CanActivate first.
func (u *User) ApplyActivation(now time.Time) {
	u.Active = true
	u.UpdatedAt = now
}

// CanDeactivate rejects deactivating a user that is already inactive.
// Use with ApplyDeactivation in Execute callbacks.
func (u *User) CanDeactivate() error {
	if !u.Active {
		return &InvalidTransitionError{Reason: "already inactive"}
	}
	return nil
}

// ApplyDeactivation marks the user inactive. Call CanDeactivate first.
func (u *User) ApplyDeactivation(now time.Time) {
	u.Active = false
	u.UpdatedAt = now
}

// Activate validates and applies activation in one call.
func (u *User) Activate(now time.Time) error {
	if err := u.CanActivate(); err != nil {
		return err
	}
	u.ApplyActivation(now)
	return nil
}

// Deactivate validates and applies deactivation in one call.
func (u *User) Deactivate(now time.Time) error {
	if err := u.CanDeactivate(); err != nil {
		return err
	}
	u.ApplyDeactivation(now)
	return nil
}
