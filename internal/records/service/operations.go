package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/audit"
	"clinic/pkg/requestcontext"
)

// CreateOperation binds a patient to a doctor. Both must exist; the patient is
// resolved first.
func (s *Service) CreateOperation(ctx context.Context, req *models.CreateOperationRequest) (operation *models.Operation, err error) {
	ctx, finish := s.startSpan(ctx, "create_operation",
		attribute.Int64("patient.id", int64(req.PatientID)),
		attribute.Int64("doctor.id", int64(req.DoctorID)),
	)
	defer func() { finish(&err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid operation request")
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		patient, err := s.resolvePatient(txCtx, req.PatientID)
		if err != nil {
			return err
		}
		doctor, err := s.resolveDoctor(txCtx, req.DoctorID)
		if err != nil {
			return err
		}
		op, err := models.NewOperation(patient.PatientID(), doctor.DoctorID(), req.Description, timeOrZero(req.ScheduledAt), now)
		if err != nil {
			return invariantToValidation(err)
		}
		if err := s.operations.Create(txCtx, op); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create operation")
		}
		if err := s.emitAudit(txCtx, audit.EventOperationScheduled, patient.ID, models.KindOperation, int64(op.ID)); err != nil {
			return err
		}
		operation = op
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.incrementCreated(models.KindOperation)
	return operation, nil
}

// UpdateOperationStatus changes only the status; the patient and doctor
// bindings are never touched.
func (s *Service) UpdateOperationStatus(ctx context.Context, operationID id.OperationID, status string) (operation *models.Operation, err error) {
	ctx, finish := s.startSpan(ctx, "update_operation_status", attribute.Int64("operation.id", int64(operationID)))
	defer func() { finish(&err) }()

	next, err := models.ParseOperationStatus(status)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		op, err := s.resolveOperation(txCtx, operationID)
		if err != nil {
			return err
		}
		op.ApplyStatus(next, now)
		if err := s.operations.Update(txCtx, op); err != nil {
			return wrapWriteErr(err, models.KeyOperation, operationID.String(), "failed to update operation")
		}
		if err := s.emitAudit(txCtx, audit.EventOperationStatusChanged, op.PatientID.UserID(), models.KindOperation, int64(op.ID)); err != nil {
			return err
		}
		operation = op
		return nil
	})
	if err != nil {
		return nil, err
	}
	return operation, nil
}

func (s *Service) GetOperation(ctx context.Context, operationID id.OperationID) (*models.Operation, error) {
	return s.resolveOperation(ctx, operationID)
}
