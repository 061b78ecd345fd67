package models

import (
	"strings"
	"time"

	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
)

type Patient struct {
	User
	BirthDate time.Time `json:"birth_date"`
	Document  string    `json:"document,omitempty"`
}

func (p *Patient) PatientID() id.PatientID { return id.PatientID(p.ID) }

func NewPatient(name, email, phone string, birthDate time.Time, document string, now time.Time) (*Patient, error) {
	u, err := newUser(RolePatient, name, email, phone, now)
	if err != nil {
		return nil, err
	}
	if birthDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "birth_date is required")
	}
	if birthDate.After(now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "birth_date cannot be in the future")
	}
	return &Patient{User: u, BirthDate: birthDate, Document: strings.TrimSpace(document)}, nil
}

type Doctor struct {
	Employee
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"license_number"`
}

func (d *Doctor) DoctorID() id.DoctorID { return id.DoctorID(d.ID) }

func NewDoctor(name, email, phone, specialty, licenseNumber string, hiredAt, now time.Time) (*Doctor, error) {
	u, err := newUser(RoleDoctor, name, email, phone, now)
	if err != nil {
		return nil, err
	}
	specialty = strings.TrimSpace(specialty)
	licenseNumber = strings.TrimSpace(licenseNumber)
	if specialty == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "specialty cannot be empty")
	}
	if licenseNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "license_number cannot be empty")
	}
	if hiredAt.IsZero() {
		hiredAt = now
	}
	return &Doctor{
		Employee:      Employee{User: u, HiredAt: hiredAt},
		Specialty:     specialty,
		LicenseNumber: licenseNumber,
	}, nil
}

type Cashier struct {
	Employee
}

func (c *Cashier) CashierID() id.CashierID { return id.CashierID(c.ID) }

func NewCashier(name, email, phone string, hiredAt, now time.Time) (*Cashier, error) {
	u, err := newUser(RoleCashier, name, email, phone, now)
	if err != nil {
		return nil, err
	}
	if hiredAt.IsZero() {
		hiredAt = now
	}
	return &Cashier{Employee: Employee{User: u, HiredAt: hiredAt}}, nil
}
