package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
)

// ValidateReportRequest resolves the report's references and checks that the
// patient and doctor are the ones bound to the operation.
func (s *Service) ValidateReportRequest(ctx context.Context, patientID id.PatientID, doctorID id.DoctorID, operationID id.OperationID) (refs *models.ReportRefs, err error) {
	ctx, finish := s.startSpan(ctx, "validate_report_request",
		attribute.Int64("patient.id", int64(patientID)),
		attribute.Int64("doctor.id", int64(doctorID)),
		attribute.Int64("operation.id", int64(operationID)),
	)
	defer func() { finish(&err) }()

	return s.validateReportRequest(ctx, patientID, doctorID, operationID)
}

func (s *Service) validateReportRequest(ctx context.Context, patientID id.PatientID, doctorID id.DoctorID, operationID id.OperationID) (*models.ReportRefs, error) {
	refs, err := s.resolveReportRefs(ctx, patientID, doctorID, operationID)
	if err != nil {
		return nil, err
	}
	if err := checkReportConsistency(refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// checkReportConsistency reports the first disagreement between the request
// and the operation, patient before doctor. Expected is the operation's side.
func checkReportConsistency(refs *models.ReportRefs) error {
	op := refs.Operation
	if op.PatientID != refs.Patient.PatientID() {
		return &models.MismatchError{
			Role:       models.RolePatientMismatch,
			ExpectedID: int64(op.PatientID),
			ActualID:   int64(refs.Patient.ID),
		}
	}
	if op.DoctorID != refs.Doctor.DoctorID() {
		return &models.MismatchError{
			Role:       models.RoleDoctorMismatch,
			ExpectedID: int64(op.DoctorID),
			ActualID:   int64(refs.Doctor.ID),
		}
	}
	return nil
}
