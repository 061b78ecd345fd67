package postgres

import (
	"context"
	"fmt"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/sentinel"
	txcontext "clinic/pkg/platform/tx"
)

const userColumns = `u.id, u.role, u.name, u.email, u.phone, u.active, u.created_at, u.updated_at`

func userDest(u *models.User) []any {
	return []any{&u.ID, &u.Role, &u.Name, &u.Email, &u.Phone, &u.Active, &u.CreatedAt, &u.UpdatedAt}
}

// insertUser assigns the shared identity. Caller must be inside a tx.
func (b base) insertUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (role, name, email, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := b.execer(ctx).QueryRowContext(ctx, query,
		string(u.Role), u.Name, u.Email, u.Phone, u.Active, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

type PatientStore struct {
	base
}

func (s *PatientStore) Create(ctx context.Context, p *models.Patient) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.insertUser(ctx, &p.User); err != nil {
			return err
		}
		_, err := s.execer(ctx).ExecContext(ctx,
			`INSERT INTO patients (user_id, birth_date, document) VALUES ($1, $2, $3)`,
			int64(p.ID), p.BirthDate, p.Document,
		)
		if err != nil {
			return fmt.Errorf("insert patient: %w", err)
		}
		return nil
	})
}

func (s *PatientStore) FindByID(ctx context.Context, patientID id.PatientID) (*models.Patient, error) {
	query := `
		SELECT ` + userColumns + `, p.birth_date, p.document
		FROM users u
		JOIN patients p ON p.user_id = u.id
		WHERE u.id = $1
	`
	var p models.Patient
	dest := append(userDest(&p.User), &p.BirthDate, &p.Document)
	if err := s.execer(ctx).QueryRowContext(ctx, query, int64(patientID)).Scan(dest...); err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &p, nil
}

type DoctorStore struct {
	base
}

func (s *DoctorStore) Create(ctx context.Context, d *models.Doctor) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.insertUser(ctx, &d.User); err != nil {
			return err
		}
		_, err := s.execer(ctx).ExecContext(ctx,
			`INSERT INTO doctors (user_id, hired_at, specialty, license_number) VALUES ($1, $2, $3, $4)`,
			int64(d.ID), d.HiredAt, d.Specialty, d.LicenseNumber,
		)
		if err != nil {
			return fmt.Errorf("insert doctor: %w", err)
		}
		return nil
	})
}

func (s *DoctorStore) FindByID(ctx context.Context, doctorID id.DoctorID) (*models.Doctor, error) {
	query := `
		SELECT ` + userColumns + `, d.hired_at, d.specialty, d.license_number
		FROM users u
		JOIN doctors d ON d.user_id = u.id
		WHERE u.id = $1
	`
	var d models.Doctor
	dest := append(userDest(&d.User), &d.HiredAt, &d.Specialty, &d.LicenseNumber)
	if err := s.execer(ctx).QueryRowContext(ctx, query, int64(doctorID)).Scan(dest...); err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return &d, nil
}

type CashierStore struct {
	base
}

func (s *CashierStore) Create(ctx context.Context, c *models.Cashier) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.insertUser(ctx, &c.User); err != nil {
			return err
		}
		_, err := s.execer(ctx).ExecContext(ctx,
			`INSERT INTO cashiers (user_id, hired_at) VALUES ($1, $2)`,
			int64(c.ID), c.HiredAt,
		)
		if err != nil {
			return fmt.Errorf("insert cashier: %w", err)
		}
		return nil
	})
}

func (s *CashierStore) FindByID(ctx context.Context, cashierID id.CashierID) (*models.Cashier, error) {
	query := `
		SELECT ` + userColumns + `, c.hired_at
		FROM users u
		JOIN cashiers c ON c.user_id = u.id
		WHERE u.id = $1
	`
	var c models.Cashier
	dest := append(userDest(&c.User), &c.HiredAt)
	if err := s.execer(ctx).QueryRowContext(ctx, query, int64(cashierID)).Scan(dest...); err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find cashier: %w", err)
	}
	return &c, nil
}

type UserStore struct {
	base
}

func (s *UserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.scanUser(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, userID)
}

func (s *UserStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		models.NormalizeEmail(email),
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

// Execute locks the user row with SELECT ... FOR UPDATE, runs validate and
// mutate on it, and writes the lifecycle fields back in the same transaction.
func (s *UserStore) Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	var out *models.User
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		u, err := s.scanUser(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1 FOR UPDATE`, userID)
		if err != nil {
			return err
		}
		if err := validate(u); err != nil {
			return err
		}
		mutate(u)
		_, err = s.execer(ctx).ExecContext(ctx,
			`UPDATE users SET active = $2, updated_at = $3 WHERE id = $1`,
			int64(u.ID), u.Active, u.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UserStore) scanUser(ctx context.Context, query string, userID id.UserID) (*models.User, error) {
	var u models.User
	if err := s.execer(ctx).QueryRowContext(ctx, query, int64(userID)).Scan(userDest(&u)...); err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
