package models

import (
	"time"

	id "clinic/pkg/domain"
)

// Report is the clinical write-up of an operation.
//
// Invariants (enforced by the service, backed by a unique index):
//   - PatientID equals the operation's patient and DoctorID its doctor
//   - at most one report exists per OperationID
type Report struct {
	ID          id.ReportID    `json:"id"`
	OperationID id.OperationID `json:"operation_id"`
	PatientID   id.PatientID   `json:"patient_id"`
	DoctorID    id.DoctorID    `json:"doctor_id"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ReportRefs are the entities a report request resolved to.
type ReportRefs struct {
	Patient   *Patient
	Doctor    *Doctor
	Operation *Operation
}
