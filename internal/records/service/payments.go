package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/audit"
	"clinic/pkg/requestcontext"
)

func (s *Service) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (payment *models.Payment, err error) {
	ctx, finish := s.startSpan(ctx, "create_payment",
		attribute.Int64("patient.id", int64(req.PatientID)),
		attribute.Int64("cashier.id", int64(req.CashierID)),
	)
	defer func() { finish(&err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid payment request")
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		patient, err := s.resolvePatient(txCtx, req.PatientID)
		if err != nil {
			return err
		}
		cashier, err := s.resolveCashier(txCtx, req.CashierID)
		if err != nil {
			return err
		}
		p, err := models.NewPayment(patient.PatientID(), cashier.CashierID(), req.AmountCents, req.Method, now)
		if err != nil {
			return invariantToValidation(err)
		}
		if err := s.payments.Create(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create payment")
		}
		if err := s.emitAudit(txCtx, audit.EventPaymentRegistered, patient.ID, models.KindPayment, int64(p.ID)); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.incrementCreated(models.KindPayment)
	return payment, nil
}

func (s *Service) GetPayment(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	return s.resolvePayment(ctx, paymentID)
}

// EmitReceipt issues the single receipt a payment may have.
func (s *Service) EmitReceipt(ctx context.Context, paymentID id.PaymentID) (receipt *models.Receipt, err error) {
	ctx, finish := s.startSpan(ctx, "emit_receipt", attribute.Int64("payment.id", int64(paymentID)))
	defer func() { finish(&err) }()

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err := s.resolvePayment(txCtx, paymentID)
		if err != nil {
			return err
		}
		if err := s.guardReceiptUniqueness(txCtx, payment.ID); err != nil {
			return err
		}
		r := &models.Receipt{
			PaymentID: payment.ID,
			Number:    uuid.NewString(),
			IssuedAt:  now,
		}
		if err := s.receipts.Create(txCtx, r); err != nil {
			return wrapWriteErr(err, models.KeyPayment, payment.ID.String(), "failed to emit receipt")
		}
		if err := s.emitAudit(txCtx, audit.EventReceiptEmitted, payment.PatientID.UserID(), models.KindReceipt, int64(r.ID)); err != nil {
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.incrementCreated(models.KindReceipt)
	return receipt, nil
}

func (s *Service) GetReceipt(ctx context.Context, receiptID id.ReceiptID) (*models.Receipt, error) {
	return s.resolveReceipt(ctx, receiptID)
}
