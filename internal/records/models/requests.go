package models

import (
	"errors"
	"strings"
	"time"

	id "clinic/pkg/domain"
)

// Request validation covers field shape only (presence, length, format).
// Cross-entity invariants are checked by the service after Validate passes.

const (
	maxContentLength     = 20000
	maxDescriptionLength = 2000
	dateLayout           = "2006-01-02"
)

type CreatePatientRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
	Document  string `json:"document"`
}

func (r *CreatePatientRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Document = strings.TrimSpace(r.Document)
}

func (r *CreatePatientRequest) Validate() error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if r.Email == "" {
		errs = append(errs, errors.New("email is required"))
	}
	if _, err := r.ParsedBirthDate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *CreatePatientRequest) ParsedBirthDate() (time.Time, error) {
	if r.BirthDate == "" {
		return time.Time{}, errors.New("birth_date is required")
	}
	t, err := time.Parse(dateLayout, r.BirthDate)
	if err != nil {
		return time.Time{}, errors.New("birth_date must be YYYY-MM-DD")
	}
	return t, nil
}

type CreateDoctorRequest struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Specialty     string     `json:"specialty"`
	LicenseNumber string     `json:"license_number"`
	HiredAt       *time.Time `json:"hired_at,omitempty"`
}

func (r *CreateDoctorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Specialty = strings.TrimSpace(r.Specialty)
	r.LicenseNumber = strings.TrimSpace(r.LicenseNumber)
}

func (r *CreateDoctorRequest) Validate() error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if r.Email == "" {
		errs = append(errs, errors.New("email is required"))
	}
	if r.Specialty == "" {
		errs = append(errs, errors.New("specialty is required"))
	}
	if r.LicenseNumber == "" {
		errs = append(errs, errors.New("license_number is required"))
	}
	return errors.Join(errs...)
}

type CreateCashierRequest struct {
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	HiredAt *time.Time `json:"hired_at,omitempty"`
}

func (r *CreateCashierRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *CreateCashierRequest) Validate() error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if r.Email == "" {
		errs = append(errs, errors.New("email is required"))
	}
	return errors.Join(errs...)
}

type CreateOperationRequest struct {
	PatientID   id.PatientID `json:"patient_id"`
	DoctorID    id.DoctorID  `json:"doctor_id"`
	Description string       `json:"description"`
	ScheduledAt *time.Time   `json:"scheduled_at,omitempty"`
}

func (r *CreateOperationRequest) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
}

func (r *CreateOperationRequest) Validate() error {
	var errs []error
	if r.PatientID.IsNil() {
		errs = append(errs, errors.New("patient_id is required"))
	}
	if r.DoctorID.IsNil() {
		errs = append(errs, errors.New("doctor_id is required"))
	}
	if len(r.Description) > maxDescriptionLength {
		errs = append(errs, errors.New("description is too long"))
	}
	return errors.Join(errs...)
}

type UpdateOperationStatusRequest struct {
	Status string `json:"status"`
}

// ReportRequest is the body for both creating and updating a report.
type ReportRequest struct {
	OperationID id.OperationID `json:"operation_id"`
	PatientID   id.PatientID   `json:"patient_id"`
	DoctorID    id.DoctorID    `json:"doctor_id"`
	Content     string         `json:"content"`
}

func (r *ReportRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

func (r *ReportRequest) Validate() error {
	var errs []error
	if r.OperationID.IsNil() {
		errs = append(errs, errors.New("operation_id is required"))
	}
	if r.PatientID.IsNil() {
		errs = append(errs, errors.New("patient_id is required"))
	}
	if r.DoctorID.IsNil() {
		errs = append(errs, errors.New("doctor_id is required"))
	}
	if r.Content == "" {
		errs = append(errs, errors.New("content is required"))
	}
	if len(r.Content) > maxContentLength {
		errs = append(errs, errors.New("content is too long"))
	}
	return errors.Join(errs...)
}

type CreatePaymentRequest struct {
	PatientID   id.PatientID  `json:"patient_id"`
	CashierID   id.CashierID  `json:"cashier_id"`
	AmountCents int64         `json:"amount_cents"`
	Method      PaymentMethod `json:"method"`
}

func (r *CreatePaymentRequest) Normalize() {
	r.Method = PaymentMethod(strings.ToUpper(strings.TrimSpace(string(r.Method))))
}

func (r *CreatePaymentRequest) Validate() error {
	var errs []error
	if r.PatientID.IsNil() {
		errs = append(errs, errors.New("patient_id is required"))
	}
	if r.CashierID.IsNil() {
		errs = append(errs, errors.New("cashier_id is required"))
	}
	if r.AmountCents <= 0 {
		errs = append(errs, errors.New("amount_cents must be positive"))
	}
	if !r.Method.IsValid() {
		errs = append(errs, errors.New("method must be one of CASH, CARD, PIX, INSURANCE"))
	}
	return errors.Join(errs...)
}
