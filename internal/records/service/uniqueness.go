package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/sentinel"
)

// GuardReportUniqueness fails when another report already holds operationID.
// Pass the id of the report being updated as excluding so it does not
// conflict with itself; nil on create.
func (s *Service) GuardReportUniqueness(ctx context.Context, operationID id.OperationID, excluding *id.ReportID) (err error) {
	ctx, finish := s.startSpan(ctx, "guard_report_uniqueness", attribute.Int64("operation.id", int64(operationID)))
	defer func() { finish(&err) }()

	return s.guardReportUniqueness(ctx, operationID, excluding)
}

func (s *Service) guardReportUniqueness(ctx context.Context, operationID id.OperationID, excluding *id.ReportID) error {
	existing, err := s.reports.FindByOperationID(ctx, operationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check report uniqueness")
	}
	if excluding != nil && existing.ID == *excluding {
		return nil
	}
	return &models.AlreadyExistsError{Key: models.KeyOperation, Value: operationID.String()}
}

// GuardReceiptUniqueness fails when paymentID already has a receipt.
// Receipts are never updated, so there is no self-exclusion.
func (s *Service) GuardReceiptUniqueness(ctx context.Context, paymentID id.PaymentID) (err error) {
	ctx, finish := s.startSpan(ctx, "guard_receipt_uniqueness", attribute.Int64("payment.id", int64(paymentID)))
	defer func() { finish(&err) }()

	return s.guardReceiptUniqueness(ctx, paymentID)
}

func (s *Service) guardReceiptUniqueness(ctx context.Context, paymentID id.PaymentID) error {
	exists, err := s.receipts.ExistsByPaymentID(ctx, paymentID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check receipt uniqueness")
	}
	if exists {
		return &models.AlreadyExistsError{Key: models.KeyPayment, Value: paymentID.String()}
	}
	return nil
}

func (s *Service) guardEmailUniqueness(ctx context.Context, email string) error {
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email uniqueness")
	}
	if taken {
		return &models.AlreadyExistsError{Key: models.KeyEmail, Value: models.NormalizeEmail(email)}
	}
	return nil
}
