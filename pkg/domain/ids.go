// Package domain holds the typed identifiers shared across record modules.
//
// Identifiers are positive int64 values assigned by the store on first insert.
// Distinct named types keep a PatientID from being passed where a DoctorID is
// expected, even though both are drawn from the same user sequence.
package domain

import (
	"strconv"
	"strings"

	dErrors "clinic/pkg/domain-errors"
)

type (
	UserID      int64
	PatientID   int64
	DoctorID    int64
	CashierID   int64
	OperationID int64
	ReportID    int64
	PaymentID   int64
	ReceiptID   int64
)

// maxIDLength bounds the decimal form of an int64.
const maxIDLength = 19

func parseID(kind, raw string) (int64, error) {
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	if len(raw) > maxIDLength || strings.TrimSpace(raw) != raw {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id must be positive")
	}
	return v, nil
}

func ParseUserID(s string) (UserID, error) {
	v, err := parseID("user", s)
	return UserID(v), err
}

func ParsePatientID(s string) (PatientID, error) {
	v, err := parseID("patient", s)
	return PatientID(v), err
}

func ParseDoctorID(s string) (DoctorID, error) {
	v, err := parseID("doctor", s)
	return DoctorID(v), err
}

func ParseCashierID(s string) (CashierID, error) {
	v, err := parseID("cashier", s)
	return CashierID(v), err
}

func ParseOperationID(s string) (OperationID, error) {
	v, err := parseID("operation", s)
	return OperationID(v), err
}

func ParseReportID(s string) (ReportID, error) {
	v, err := parseID("report", s)
	return ReportID(v), err
}

func ParsePaymentID(s string) (PaymentID, error) {
	v, err := parseID("payment", s)
	return PaymentID(v), err
}

func ParseReceiptID(s string) (ReceiptID, error) {
	v, err := parseID("receipt", s)
	return ReceiptID(v), err
}

func (id UserID) IsNil() bool      { return id <= 0 }
func (id PatientID) IsNil() bool   { return id <= 0 }
func (id DoctorID) IsNil() bool    { return id <= 0 }
func (id CashierID) IsNil() bool   { return id <= 0 }
func (id OperationID) IsNil() bool { return id <= 0 }
func (id ReportID) IsNil() bool    { return id <= 0 }
func (id PaymentID) IsNil() bool   { return id <= 0 }
func (id ReceiptID) IsNil() bool   { return id <= 0 }

func (id UserID) String() string      { return strconv.FormatInt(int64(id), 10) }
func (id PatientID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id DoctorID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id CashierID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id OperationID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id ReportID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id PaymentID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id ReceiptID) String() string   { return strconv.FormatInt(int64(id), 10) }

// UserID returns the shared user identity behind a role-specific id.
func (id PatientID) UserID() UserID { return UserID(id) }
func (id DoctorID) UserID() UserID  { return UserID(id) }
func (id CashierID) UserID() UserID { return UserID(id) }
