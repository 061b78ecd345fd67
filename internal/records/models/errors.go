package models

import (
	"fmt"

	dErrors "clinic/pkg/domain-errors"
)

// Kind names an entity type in NotFound errors and audit events.
type Kind string

const (
	KindUser      Kind = "user"
	KindPatient   Kind = "patient"
	KindDoctor    Kind = "doctor"
	KindCashier   Kind = "cashier"
	KindOperation Kind = "operation"
	KindReport    Kind = "report"
	KindPayment   Kind = "payment"
	KindReceipt   Kind = "receipt"
)

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind Kind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) ErrorCode() dErrors.Code { return dErrors.CodeNotFound }

// MismatchRole names which participant disagreed with the operation.
type MismatchRole string

const (
	RolePatientMismatch MismatchRole = "patient"
	RoleDoctorMismatch  MismatchRole = "doctor"
)

// MismatchError reports a report request whose participant differs from the
// one bound to the operation. ExpectedID is the operation's, ActualID the
// request's.
type MismatchError struct {
	Role       MismatchRole
	ExpectedID int64
	ActualID   int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s %d does not match operation %s %d", e.Role, e.ActualID, e.Role, e.ExpectedID)
}

func (e *MismatchError) ErrorCode() dErrors.Code { return dErrors.CodeMismatch }

// UniqueKey names the attribute a uniqueness guard protects.
type UniqueKey string

const (
	KeyOperation UniqueKey = "operation"
	KeyPayment   UniqueKey = "payment"
	KeyEmail     UniqueKey = "email"
)

// AlreadyExistsError reports that a one-to-one binding is already taken.
type AlreadyExistsError struct {
	Key   UniqueKey
	Value string
}

func (e *AlreadyExistsError) Error() string {
	switch e.Key {
	case KeyOperation:
		return fmt.Sprintf("a report already exists for operation %s", e.Value)
	case KeyPayment:
		return fmt.Sprintf("a receipt already exists for payment %s", e.Value)
	default:
		return fmt.Sprintf("%s %s is already registered", e.Key, e.Value)
	}
}

func (e *AlreadyExistsError) ErrorCode() dErrors.Code { return dErrors.CodeAlreadyExists }

// InvalidTransitionError reports a no-op lifecycle transition.
type InvalidTransitionError struct {
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return "invalid transition: " + e.Reason
}

func (e *InvalidTransitionError) ErrorCode() dErrors.Code { return dErrors.CodeInvalidTransition }
