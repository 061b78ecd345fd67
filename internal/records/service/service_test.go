package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"clinic/internal/records/models"
	"clinic/internal/records/service/mocks"
	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/sentinel"
	"clinic/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks
type ServiceSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	patients       *mocks.MockPatientStore
	doctors        *mocks.MockDoctorStore
	cashiers       *mocks.MockCashierStore
	users          *mocks.MockUserStore
	operations     *mocks.MockOperationStore
	reports        *mocks.MockReportStore
	payments       *mocks.MockPaymentStore
	receipts       *mocks.MockReceiptStore
	auditPublisher *mocks.MockAuditPublisher
	service        *Service
	ctx            context.Context
	now            time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.patients = mocks.NewMockPatientStore(s.ctrl)
	s.doctors = mocks.NewMockDoctorStore(s.ctrl)
	s.cashiers = mocks.NewMockCashierStore(s.ctrl)
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.operations = mocks.NewMockOperationStore(s.ctrl)
	s.reports = mocks.NewMockReportStore(s.ctrl)
	s.payments = mocks.NewMockPaymentStore(s.ctrl)
	s.receipts = mocks.NewMockReceiptStore(s.ctrl)
	s.auditPublisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(Stores{
		Patients:   s.patients,
		Doctors:    s.doctors,
		Cashiers:   s.cashiers,
		Users:      s.users,
		Operations: s.operations,
		Reports:    s.reports,
		Payments:   s.payments,
		Receipts:   s.receipts,
	}, WithAuditPublisher(s.auditPublisher))
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func patientWithID(v int64) *models.Patient {
	return &models.Patient{User: models.User{ID: id.UserID(v), Role: models.RolePatient, Active: true}}
}

func doctorWithID(v int64) *models.Doctor {
	return &models.Doctor{Employee: models.Employee{User: models.User{ID: id.UserID(v), Role: models.RoleDoctor, Active: true}}}
}

func (s *ServiceSuite) expectRefs(patientID, doctorID, operationID int64) {
	s.patients.EXPECT().FindByID(gomock.Any(), id.PatientID(patientID)).Return(patientWithID(patientID), nil)
	s.doctors.EXPECT().FindByID(gomock.Any(), id.DoctorID(doctorID)).Return(doctorWithID(doctorID), nil)
	s.operations.EXPECT().FindByID(gomock.Any(), id.OperationID(operationID)).Return(&models.Operation{
		ID: id.OperationID(operationID), PatientID: 1, DoctorID: 2, Status: models.OperationCompleted,
	}, nil)
}

func reportRequest(patientID, doctorID, operationID int64) *models.ReportRequest {
	return &models.ReportRequest{
		PatientID:   id.PatientID(patientID),
		DoctorID:    id.DoctorID(doctorID),
		OperationID: id.OperationID(operationID),
		Content:     "findings",
	}
}

// TestReportUniquenessExample covers operation 5 already holding report 10.
func (s *ServiceSuite) TestReportUniquenessExample() {
	held := &models.Report{ID: 10, OperationID: 5, PatientID: 1, DoctorID: 2, Content: "old", CreatedAt: s.now.Add(-time.Hour)}

	s.Run("creating a new report for operation 5 fails before any write", func() {
		s.expectRefs(1, 2, 5)
		s.reports.EXPECT().FindByOperationID(gomock.Any(), id.OperationID(5)).Return(held, nil)

		_, err := s.service.CreateReport(s.ctx, reportRequest(1, 2, 5))
		var exists *models.AlreadyExistsError
		s.Require().ErrorAs(err, &exists)
		s.Equal("5", exists.Value)
	})

	s.Run("updating report 10 on operation 5 succeeds", func() {
		s.reports.EXPECT().FindByID(gomock.Any(), id.ReportID(10)).Return(held, nil)
		s.expectRefs(1, 2, 5)
		s.reports.EXPECT().FindByOperationID(gomock.Any(), id.OperationID(5)).Return(held, nil)
		s.reports.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *models.Report) error {
			s.Equal(id.ReportID(10), r.ID)
			s.Equal(id.OperationID(5), r.OperationID)
			s.Equal("findings", r.Content)
			return nil
		})
		s.auditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		r, err := s.service.UpdateReport(s.ctx, 10, reportRequest(1, 2, 5))
		s.Require().NoError(err)
		s.Equal(held.CreatedAt, r.CreatedAt)
		s.Equal(s.now, r.UpdatedAt)
	})

	s.Run("a unique index violation on create is the same AlreadyExists", func() {
		s.expectRefs(1, 2, 5)
		s.reports.EXPECT().FindByOperationID(gomock.Any(), id.OperationID(5)).Return(nil, sentinel.ErrNotFound)
		s.reports.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.CreateReport(s.ctx, reportRequest(1, 2, 5))
		var exists *models.AlreadyExistsError
		s.Require().ErrorAs(err, &exists)
		s.Equal(models.KeyOperation, exists.Key)
	})
}

func (s *ServiceSuite) TestResolutionShortCircuits() {
	s.Run("missing patient stops before doctor and operation", func() {
		s.patients.EXPECT().FindByID(gomock.Any(), id.PatientID(999999)).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.ValidateReportRequest(s.ctx, 999999, 2, 5)
		var notFound *models.NotFoundError
		s.Require().ErrorAs(err, &notFound)
		s.Equal(models.KindPatient, notFound.Kind)
		s.Equal(int64(999999), notFound.ID)
	})

	s.Run("missing operation after patient and doctor resolve", func() {
		s.patients.EXPECT().FindByID(gomock.Any(), id.PatientID(1)).Return(patientWithID(1), nil)
		s.doctors.EXPECT().FindByID(gomock.Any(), id.DoctorID(2)).Return(doctorWithID(2), nil)
		s.operations.EXPECT().FindByID(gomock.Any(), id.OperationID(999999)).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.CreateReport(s.ctx, reportRequest(1, 2, 999999))
		var notFound *models.NotFoundError
		s.Require().ErrorAs(err, &notFound)
		s.Equal(models.KindOperation, notFound.Kind)
	})

	s.Run("store failures are internal, not NotFound", func() {
		s.patients.EXPECT().FindByID(gomock.Any(), id.PatientID(1)).Return(nil, errors.New("connection reset"))

		_, err := s.service.ValidateReportRequest(s.ctx, 1, 2, 5)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("resolved references are returned together", func() {
		s.expectRefs(1, 2, 5)
		refs, err := s.service.ValidateReportRequest(s.ctx, 1, 2, 5)
		s.Require().NoError(err)
		s.Equal(id.OperationID(5), refs.Operation.ID)
		s.Equal(id.UserID(1), refs.Patient.ID)
		s.Equal(id.UserID(2), refs.Doctor.ID)
	})
}

func (s *ServiceSuite) TestReportMismatchWritesNothing() {
	s.expectRefs(3, 2, 5)

	_, err := s.service.CreateReport(s.ctx, reportRequest(3, 2, 5))
	var mismatch *models.MismatchError
	s.Require().ErrorAs(err, &mismatch)
	s.Equal(models.RolePatientMismatch, mismatch.Role)
	s.Equal(int64(1), mismatch.ExpectedID)
	s.Equal(int64(3), mismatch.ActualID)
	// gomock fails the test on any unexpected FindByOperationID or Create call.
}

// TestReceiptUniquenessExample covers payment 1 already holding receipt 1.
func (s *ServiceSuite) TestReceiptUniquenessExample() {
	payment := &models.Payment{ID: 1, PatientID: 7, CashierID: 8, AmountCents: 100, Method: models.PaymentCash, Status: models.PaymentPaid}

	s.Run("second emit fails without writing", func() {
		s.payments.EXPECT().FindByID(gomock.Any(), id.PaymentID(1)).Return(payment, nil)
		s.receipts.EXPECT().ExistsByPaymentID(gomock.Any(), id.PaymentID(1)).Return(true, nil)

		_, err := s.service.EmitReceipt(s.ctx, 1)
		var exists *models.AlreadyExistsError
		s.Require().ErrorAs(err, &exists)
		s.Equal(models.KeyPayment, exists.Key)
		s.Equal("1", exists.Value)
	})

	s.Run("concurrent winner surfaces as AlreadyExists", func() {
		s.payments.EXPECT().FindByID(gomock.Any(), id.PaymentID(1)).Return(payment, nil)
		s.receipts.EXPECT().ExistsByPaymentID(gomock.Any(), id.PaymentID(1)).Return(false, nil)
		s.receipts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.EmitReceipt(s.ctx, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	s.Run("first emit stamps the request time", func() {
		s.payments.EXPECT().FindByID(gomock.Any(), id.PaymentID(1)).Return(payment, nil)
		s.receipts.EXPECT().ExistsByPaymentID(gomock.Any(), id.PaymentID(1)).Return(false, nil)
		s.receipts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *models.Receipt) error {
			r.ID = 1
			return nil
		})
		s.auditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		r, err := s.service.EmitReceipt(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(id.ReceiptID(1), r.ID)
		s.Equal(s.now, r.IssuedAt)
		s.NotEmpty(r.Number)
	})
}

func (s *ServiceSuite) TestLifecycleGuards() {
	s.Run("guard errors raised inside Execute pass through", func() {
		s.users.EXPECT().Execute(gomock.Any(), id.UserID(4), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
				u := &models.User{ID: 4, Active: false}
				if err := validate(u); err != nil {
					return nil, err
				}
				mutate(u)
				return u, nil
			})

		_, err := s.service.DeactivateUser(s.ctx, 4)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("mutation uses the request time", func() {
		s.users.EXPECT().Execute(gomock.Any(), id.UserID(4), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
				u := &models.User{ID: 4, Active: false}
				if err := validate(u); err != nil {
					return nil, err
				}
				mutate(u)
				return u, nil
			})
		s.auditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		u, err := s.service.ActivateUser(s.ctx, 4)
		s.Require().NoError(err)
		s.True(u.Active)
		s.Equal(s.now, u.UpdatedAt)
	})

	s.Run("unknown user", func() {
		s.users.EXPECT().Execute(gomock.Any(), id.UserID(999999), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.ActivateUser(s.ctx, 999999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("zero id never reaches the store", func() {
		_, err := s.service.DeactivateUser(s.ctx, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
