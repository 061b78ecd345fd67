package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	db  *DB
	ctx context.Context
	now time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.db = New()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newPatient(email string) *models.Patient {
	p, err := models.NewPatient("Ana Souza", email, "", time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.db.Patients().Create(s.ctx, p))
	return p
}

func (s *MemoryStoreSuite) newDoctor(email string) *models.Doctor {
	d, err := models.NewDoctor("Dr. Lima", email, "", "cardiology", "CRM-1", time.Time{}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.db.Doctors().Create(s.ctx, d))
	return d
}

func (s *MemoryStoreSuite) TestUserIdentity() {
	s.Run("roles share one identity sequence", func() {
		p := s.newPatient("p1@clinic.test")
		d := s.newDoctor("d1@clinic.test")
		c, err := models.NewCashier("Caixa", "c1@clinic.test", "", time.Time{}, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.db.Cashiers().Create(s.ctx, c))

		s.Less(int64(p.ID), int64(d.ID))
		s.Less(int64(d.ID), int64(c.ID))

		_, err = s.db.Doctors().FindByID(s.ctx, id.DoctorID(p.ID))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("email is unique across roles regardless of case", func() {
		s.newPatient("shared@clinic.test")
		d, err := models.NewDoctor("Dr. Other", "SHARED@clinic.test", "", "ortho", "CRM-2", time.Time{}, s.now)
		s.Require().NoError(err)
		err = s.db.Doctors().Create(s.ctx, d)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		taken, err := s.db.Users().EmailTaken(s.ctx, "Shared@Clinic.Test")
		s.Require().NoError(err)
		s.True(taken)
	})

	s.Run("finds the shared user fields of any role", func() {
		d := s.newDoctor("lookup@clinic.test")
		u, err := s.db.Users().FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleDoctor, u.Role)
		s.True(u.Active)
	})
}

func (s *MemoryStoreSuite) TestExecute() {
	s.Run("validate failure leaves the user unchanged", func() {
		p := s.newPatient("exec1@clinic.test")
		sentinelErr := errors.New("rejected")
		mutated := false

		_, err := s.db.Users().Execute(s.ctx, p.ID,
			func(*models.User) error { return sentinelErr },
			func(*models.User) { mutated = true },
		)
		s.ErrorIs(err, sentinelErr)
		s.False(mutated)

		found, err := s.db.Patients().FindByID(s.ctx, p.PatientID())
		s.Require().NoError(err)
		s.True(found.Active)
	})

	s.Run("mutation is written back to the role record", func() {
		p := s.newPatient("exec2@clinic.test")
		later := s.now.Add(time.Hour)

		u, err := s.db.Users().Execute(s.ctx, p.ID,
			func(u *models.User) error { return u.CanDeactivate() },
			func(u *models.User) { u.ApplyDeactivation(later) },
		)
		s.Require().NoError(err)
		s.False(u.Active)

		found, err := s.db.Patients().FindByID(s.ctx, p.PatientID())
		s.Require().NoError(err)
		s.False(found.Active)
		s.Equal(later, found.UpdatedAt)
		s.Equal(p.BirthDate, found.BirthDate)
	})

	s.Run("unknown user", func() {
		_, err := s.db.Users().Execute(s.ctx, id.UserID(999999),
			func(*models.User) error { return nil },
			func(*models.User) {},
		)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestReports() {
	p := s.newPatient("rp@clinic.test")
	d := s.newDoctor("rd@clinic.test")
	op1 := &models.Operation{PatientID: p.PatientID(), DoctorID: d.DoctorID(), Status: models.OperationScheduled}
	op2 := &models.Operation{PatientID: p.PatientID(), DoctorID: d.DoctorID(), Status: models.OperationScheduled}
	s.Require().NoError(s.db.Operations().Create(s.ctx, op1))
	s.Require().NoError(s.db.Operations().Create(s.ctx, op2))

	first := &models.Report{OperationID: op1.ID, PatientID: p.PatientID(), DoctorID: d.DoctorID(), Content: "ok"}
	s.Require().NoError(s.db.Reports().Create(s.ctx, first))

	s.Run("second report for the same operation is rejected", func() {
		dup := &models.Report{OperationID: op1.ID, PatientID: p.PatientID(), DoctorID: d.DoctorID(), Content: "dup"}
		s.ErrorIs(s.db.Reports().Create(s.ctx, dup), sentinel.ErrAlreadyUsed)
	})

	s.Run("finds by operation", func() {
		found, err := s.db.Reports().FindByOperationID(s.ctx, op1.ID)
		s.Require().NoError(err)
		s.Equal(first.ID, found.ID)

		_, err = s.db.Reports().FindByOperationID(s.ctx, op2.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("update moves the operation binding", func() {
		moved := *first
		moved.OperationID = op2.ID
		s.Require().NoError(s.db.Reports().Update(s.ctx, &moved))

		_, err := s.db.Reports().FindByOperationID(s.ctx, op1.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		found, err := s.db.Reports().FindByOperationID(s.ctx, op2.ID)
		s.Require().NoError(err)
		s.Equal(first.ID, found.ID)
	})

	s.Run("returned values are copies", func() {
		found, err := s.db.Reports().FindByID(s.ctx, first.ID)
		s.Require().NoError(err)
		found.Content = "changed"

		again, err := s.db.Reports().FindByID(s.ctx, first.ID)
		s.Require().NoError(err)
		s.Equal("ok", again.Content)
	})

	s.Run("lists reports by patient", func() {
		list, err := s.db.Reports().ListByPatient(s.ctx, p.PatientID())
		s.Require().NoError(err)
		s.Len(list, 1)

		list, err = s.db.Reports().ListByPatient(s.ctx, id.PatientID(999999))
		s.Require().NoError(err)
		s.Empty(list)
	})
}

func (s *MemoryStoreSuite) TestReceipts() {
	pay := &models.Payment{PatientID: 1, CashierID: 2, AmountCents: 1000, Method: models.PaymentCash, Status: models.PaymentPending}
	s.Require().NoError(s.db.Payments().Create(s.ctx, pay))

	r := &models.Receipt{PaymentID: pay.ID, Number: "n-1", IssuedAt: s.now}
	s.Require().NoError(s.db.Receipts().Create(s.ctx, r))
	s.False(r.ID.IsNil())

	err := s.db.Receipts().Create(s.ctx, &models.Receipt{PaymentID: pay.ID, Number: "n-2", IssuedAt: s.now})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	exists, err := s.db.Receipts().ExistsByPaymentID(s.ctx, pay.ID)
	s.Require().NoError(err)
	s.True(exists)

	n, err := s.db.Receipts().CountByPaymentID(s.ctx, pay.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
}
