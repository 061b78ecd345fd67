package models

import (
	"strings"
	"time"

	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
)

type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "CASH"
	PaymentCard      PaymentMethod = "CARD"
	PaymentPix       PaymentMethod = "PIX"
	PaymentInsurance PaymentMethod = "INSURANCE"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPix, PaymentInsurance:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentCanceled PaymentStatus = "CANCELED"
)

type Payment struct {
	ID          id.PaymentID  `json:"id"`
	PatientID   id.PatientID  `json:"patient_id"`
	CashierID   id.CashierID  `json:"cashier_id"`
	AmountCents int64         `json:"amount_cents"`
	Method      PaymentMethod `json:"method"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func NewPayment(patientID id.PatientID, cashierID id.CashierID, amountCents int64, method PaymentMethod, now time.Time) (*Payment, error) {
	if amountCents <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "amount must be positive")
	}
	method = PaymentMethod(strings.ToUpper(string(method)))
	if !method.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown payment method")
	}
	return &Payment{
		PatientID:   patientID,
		CashierID:   cashierID,
		AmountCents: amountCents,
		Method:      method,
		Status:      PaymentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Receipt is issued once per payment and never modified.
type Receipt struct {
	ID        id.ReceiptID `json:"id"`
	PaymentID id.PaymentID `json:"payment_id"`
	Number    string       `json:"number"`
	IssuedAt  time.Time    `json:"issued_at"`
}
