package models

import (
	"strings"
	"time"

	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
)

type OperationStatus string

const (
	OperationScheduled  OperationStatus = "SCHEDULED"
	OperationInProgress OperationStatus = "IN_PROGRESS"
	OperationCompleted  OperationStatus = "COMPLETED"
	OperationCanceled   OperationStatus = "CANCELED"
)

func (s OperationStatus) IsValid() bool {
	switch s {
	case OperationScheduled, OperationInProgress, OperationCompleted, OperationCanceled:
		return true
	}
	return false
}

// ParseOperationStatus accepts the canonical upper-case names.
func ParseOperationStatus(s string) (OperationStatus, error) {
	status := OperationStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown operation status")
	}
	return status, nil
}

// Operation binds exactly one patient to exactly one doctor.
//
// Invariants:
//   - PatientID and DoctorID are immutable once the operation exists
//   - Status is one of the four OperationStatus values
type Operation struct {
	ID          id.OperationID  `json:"id"`
	PatientID   id.PatientID    `json:"patient_id"`
	DoctorID    id.DoctorID     `json:"doctor_id"`
	Status      OperationStatus `json:"status"`
	Description string          `json:"description,omitempty"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewOperation(patientID id.PatientID, doctorID id.DoctorID, description string, scheduledAt, now time.Time) (*Operation, error) {
	if patientID.IsNil() || doctorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "operation requires a patient and a doctor")
	}
	if scheduledAt.IsZero() {
		scheduledAt = now
	}
	return &Operation{
		PatientID:   patientID,
		DoctorID:    doctorID,
		Status:      OperationScheduled,
		Description: strings.TrimSpace(description),
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyStatus changes the status only; participant bindings never move.
func (o *Operation) ApplyStatus(status OperationStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = now
}
