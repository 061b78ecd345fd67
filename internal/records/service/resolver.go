package service

import (
	"context"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
)

// Resolution is read-only and reloads from the store on every call. Multi-
// reference resolution stops at the first miss; nothing after it is loaded.

func (s *Service) resolvePatient(ctx context.Context, patientID id.PatientID) (*models.Patient, error) {
	if err := requireID(models.KindPatient, int64(patientID)); err != nil {
		return nil, err
	}
	p, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindPatient, int64(patientID))
	}
	return p, nil
}

func (s *Service) resolveDoctor(ctx context.Context, doctorID id.DoctorID) (*models.Doctor, error) {
	if err := requireID(models.KindDoctor, int64(doctorID)); err != nil {
		return nil, err
	}
	d, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindDoctor, int64(doctorID))
	}
	return d, nil
}

func (s *Service) resolveCashier(ctx context.Context, cashierID id.CashierID) (*models.Cashier, error) {
	if err := requireID(models.KindCashier, int64(cashierID)); err != nil {
		return nil, err
	}
	c, err := s.cashiers.FindByID(ctx, cashierID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindCashier, int64(cashierID))
	}
	return c, nil
}

func (s *Service) resolveUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	if err := requireID(models.KindUser, int64(userID)); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindUser, int64(userID))
	}
	return u, nil
}

func (s *Service) resolveOperation(ctx context.Context, operationID id.OperationID) (*models.Operation, error) {
	if err := requireID(models.KindOperation, int64(operationID)); err != nil {
		return nil, err
	}
	op, err := s.operations.FindByID(ctx, operationID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindOperation, int64(operationID))
	}
	return op, nil
}

func (s *Service) resolveReport(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	if err := requireID(models.KindReport, int64(reportID)); err != nil {
		return nil, err
	}
	r, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindReport, int64(reportID))
	}
	return r, nil
}

func (s *Service) resolvePayment(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	if err := requireID(models.KindPayment, int64(paymentID)); err != nil {
		return nil, err
	}
	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindPayment, int64(paymentID))
	}
	return p, nil
}

func (s *Service) resolveReceipt(ctx context.Context, receiptID id.ReceiptID) (*models.Receipt, error) {
	if err := requireID(models.KindReceipt, int64(receiptID)); err != nil {
		return nil, err
	}
	r, err := s.receipts.FindByID(ctx, receiptID)
	if err != nil {
		return nil, wrapLookupErr(err, models.KindReceipt, int64(receiptID))
	}
	return r, nil
}

// resolveReportRefs loads patient, doctor, then operation.
func (s *Service) resolveReportRefs(ctx context.Context, patientID id.PatientID, doctorID id.DoctorID, operationID id.OperationID) (*models.ReportRefs, error) {
	patient, err := s.resolvePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.resolveDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	operation, err := s.resolveOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	return &models.ReportRefs{Patient: patient, Doctor: doctor, Operation: operation}, nil
}
