package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/audit"
	"clinic/pkg/requestcontext"
)

func (s *Service) CreatePatient(ctx context.Context, req *models.CreatePatientRequest) (patient *models.Patient, err error) {
	ctx, finish := s.startSpan(ctx, "create_patient")
	defer func() { finish(&err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid patient request")
	}
	birthDate, _ := req.ParsedBirthDate()

	p, err := models.NewPatient(req.Name, req.Email, req.Phone, birthDate, req.Document, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}
	if err := s.createUser(ctx, &p.User, models.KindPatient, func(txCtx context.Context) error {
		return s.patients.Create(txCtx, p)
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) CreateDoctor(ctx context.Context, req *models.CreateDoctorRequest) (doctor *models.Doctor, err error) {
	ctx, finish := s.startSpan(ctx, "create_doctor")
	defer func() { finish(&err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid doctor request")
	}

	d, err := models.NewDoctor(req.Name, req.Email, req.Phone, req.Specialty, req.LicenseNumber, timeOrZero(req.HiredAt), requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}
	if err := s.createUser(ctx, &d.User, models.KindDoctor, func(txCtx context.Context) error {
		return s.doctors.Create(txCtx, d)
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) CreateCashier(ctx context.Context, req *models.CreateCashierRequest) (cashier *models.Cashier, err error) {
	ctx, finish := s.startSpan(ctx, "create_cashier")
	defer func() { finish(&err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid cashier request")
	}

	c, err := models.NewCashier(req.Name, req.Email, req.Phone, timeOrZero(req.HiredAt), requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}
	if err := s.createUser(ctx, &c.User, models.KindCashier, func(txCtx context.Context) error {
		return s.cashiers.Create(txCtx, c)
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// createUser guards the email, runs the role insert and records the audit
// event in one unit of work. u must be the user embedded in the record that
// create persists, so the assigned id is visible to the caller.
func (s *Service) createUser(ctx context.Context, u *models.User, kind models.Kind, create func(ctx context.Context) error) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.guardEmailUniqueness(txCtx, u.Email); err != nil {
			return err
		}
		if err := create(txCtx); err != nil {
			return wrapWriteErr(err, models.KeyEmail, u.Email, "failed to create "+string(kind))
		}
		return s.emitAudit(txCtx, audit.EventUserCreated, u.ID, kind, int64(u.ID))
	})
	if err != nil {
		return err
	}
	s.incrementCreated(kind)
	return nil
}

func (s *Service) GetPatient(ctx context.Context, patientID id.PatientID) (*models.Patient, error) {
	return s.resolvePatient(ctx, patientID)
}

func (s *Service) GetDoctor(ctx context.Context, doctorID id.DoctorID) (*models.Doctor, error) {
	return s.resolveDoctor(ctx, doctorID)
}

func (s *Service) GetCashier(ctx context.Context, cashierID id.CashierID) (*models.Cashier, error) {
	return s.resolveCashier(ctx, cashierID)
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (user *models.User, err error) {
	ctx, finish := s.startSpan(ctx, "get_user", attribute.Int64("user.id", int64(userID)))
	defer func() { finish(&err) }()
	return s.resolveUser(ctx, userID)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
