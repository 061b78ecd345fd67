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

// CreateReport runs resolve, consistency and the create-path uniqueness
// guard, then writes, all in one unit of work. Any failure before the write
// leaves the store untouched.
func (s *Service) CreateReport(ctx context.Context, req *models.ReportRequest) (report *models.Report, err error) {
	ctx, finish := s.startSpan(ctx, "create_report", attribute.Int64("operation.id", int64(req.OperationID)))
	defer func() { finish(&err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid report request")
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		refs, err := s.validateReportRequest(txCtx, req.PatientID, req.DoctorID, req.OperationID)
		if err != nil {
			return err
		}
		if err := s.guardReportUniqueness(txCtx, refs.Operation.ID, nil); err != nil {
			return err
		}
		r := &models.Report{
			OperationID: refs.Operation.ID,
			PatientID:   refs.Patient.PatientID(),
			DoctorID:    refs.Doctor.DoctorID(),
			Content:     req.Content,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.reports.Create(txCtx, r); err != nil {
			return wrapWriteErr(err, models.KeyOperation, refs.Operation.ID.String(), "failed to create report")
		}
		if err := s.emitAudit(txCtx, audit.EventReportCreated, refs.Patient.ID, models.KindReport, int64(r.ID)); err != nil {
			return err
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.incrementCreated(models.KindReport)
	return report, nil
}

// UpdateReport re-validates the full reference set and runs the update-path
// guard, which ignores the report's own binding. Moving the report to an
// operation another report holds is rejected.
func (s *Service) UpdateReport(ctx context.Context, reportID id.ReportID, req *models.ReportRequest) (report *models.Report, err error) {
	ctx, finish := s.startSpan(ctx, "update_report",
		attribute.Int64("report.id", int64(reportID)),
		attribute.Int64("operation.id", int64(req.OperationID)),
	)
	defer func() { finish(&err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid report request")
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.resolveReport(txCtx, reportID)
		if err != nil {
			return err
		}
		refs, err := s.validateReportRequest(txCtx, req.PatientID, req.DoctorID, req.OperationID)
		if err != nil {
			return err
		}
		if err := s.guardReportUniqueness(txCtx, refs.Operation.ID, &existing.ID); err != nil {
			return err
		}
		updated := *existing
		updated.OperationID = refs.Operation.ID
		updated.PatientID = refs.Patient.PatientID()
		updated.DoctorID = refs.Doctor.DoctorID()
		updated.Content = req.Content
		updated.UpdatedAt = now
		if err := s.reports.Update(txCtx, &updated); err != nil {
			return wrapWriteErr(err, models.KeyOperation, refs.Operation.ID.String(), "failed to update report")
		}
		if err := s.emitAudit(txCtx, audit.EventReportUpdated, refs.Patient.ID, models.KindReport, int64(updated.ID)); err != nil {
			return err
		}
		report = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) GetReport(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	return s.resolveReport(ctx, reportID)
}

// ListReportsByPatient fails with NotFound for an unknown patient rather than
// returning an empty list.
func (s *Service) ListReportsByPatient(ctx context.Context, patientID id.PatientID) ([]*models.Report, error) {
	if _, err := s.resolvePatient(ctx, patientID); err != nil {
		return nil, err
	}
	reports, err := s.reports.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
	}
	return reports, nil
}
