package memory

import (
	"context"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/sentinel"
)

type PatientStore struct {
	db *DB
}

// Create assigns the next user identity. A taken email yields ErrAlreadyUsed.
func (s *PatientStore) Create(_ context.Context, p *models.Patient) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.claimUser(&p.User) {
		return sentinel.ErrAlreadyUsed
	}
	s.db.patients[p.PatientID()] = *p
	return nil
}

func (s *PatientStore) FindByID(_ context.Context, patientID id.PatientID) (*models.Patient, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	p, ok := s.db.patients[patientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

type DoctorStore struct {
	db *DB
}

func (s *DoctorStore) Create(_ context.Context, d *models.Doctor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.claimUser(&d.User) {
		return sentinel.ErrAlreadyUsed
	}
	s.db.doctors[d.DoctorID()] = *d
	return nil
}

func (s *DoctorStore) FindByID(_ context.Context, doctorID id.DoctorID) (*models.Doctor, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	d, ok := s.db.doctors[doctorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

type CashierStore struct {
	db *DB
}

func (s *CashierStore) Create(_ context.Context, c *models.Cashier) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.claimUser(&c.User) {
		return sentinel.ErrAlreadyUsed
	}
	s.db.cashiers[c.CashierID()] = *c
	return nil
}

func (s *CashierStore) FindByID(_ context.Context, cashierID id.CashierID) (*models.Cashier, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	c, ok := s.db.cashiers[cashierID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// UserStore works on the shared user fields of whichever role record owns
// the identity.
type UserStore struct {
	db *DB
}

func (s *UserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	u, ok := s.db.userLocked(userID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

// EmailTaken reports whether any role already uses email, case-insensitively.
func (s *UserStore) EmailTaken(_ context.Context, email string) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	_, taken := s.db.emails[models.NormalizeEmail(email)]
	return taken, nil
}

// Execute runs validate and mutate against the stored user under the write
// lock. When validate fails nothing is written and its error is returned
// unchanged.
func (s *UserStore) Execute(_ context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.userLocked(userID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&u); err != nil {
		return nil, err
	}
	mutate(&u)
	s.db.putUserLocked(u)
	return &u, nil
}

func (db *DB) userLocked(userID id.UserID) (models.User, bool) {
	switch db.roles[userID] {
	case models.RolePatient:
		p, ok := db.patients[id.PatientID(userID)]
		return p.User, ok
	case models.RoleDoctor:
		d, ok := db.doctors[id.DoctorID(userID)]
		return d.User, ok
	case models.RoleCashier:
		c, ok := db.cashiers[id.CashierID(userID)]
		return c.User, ok
	}
	return models.User{}, false
}

// putUserLocked writes back the mutable user fields. Identity, role and email
// never change through this path.
func (db *DB) putUserLocked(u models.User) {
	switch u.Role {
	case models.RolePatient:
		p := db.patients[id.PatientID(u.ID)]
		p.Active, p.UpdatedAt = u.Active, u.UpdatedAt
		db.patients[id.PatientID(u.ID)] = p
	case models.RoleDoctor:
		d := db.doctors[id.DoctorID(u.ID)]
		d.Active, d.UpdatedAt = u.Active, u.UpdatedAt
		db.doctors[id.DoctorID(u.ID)] = d
	case models.RoleCashier:
		c := db.cashiers[id.CashierID(u.ID)]
		c.Active, c.UpdatedAt = u.Active, u.UpdatedAt
		db.cashiers[id.CashierID(u.ID)] = c
	}
}
