// Package memory holds the in-memory record stores.
//
// All stores created from one DB share a single lock and a single user
// identity sequence, so a UserID names exactly one patient, doctor or cashier
// across the three role stores. Unique attributes (email, report operation,
// receipt payment) are enforced here the same way the Postgres unique indexes
// enforce them. Reads hand out copies; callers never see stored values.
package memory

import (
	"sync"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
)

type DB struct {
	mu sync.RWMutex

	userSeq      int64
	operationSeq int64
	reportSeq    int64
	paymentSeq   int64
	receiptSeq   int64

	roles    map[id.UserID]models.Role
	emails   map[string]id.UserID
	patients map[id.PatientID]models.Patient
	doctors  map[id.DoctorID]models.Doctor
	cashiers map[id.CashierID]models.Cashier

	operations map[id.OperationID]models.Operation
	reports    map[id.ReportID]models.Report
	reportByOp map[id.OperationID]id.ReportID
	payments   map[id.PaymentID]models.Payment
	receipts   map[id.ReceiptID]models.Receipt
	receiptBy  map[id.PaymentID]id.ReceiptID
}

func New() *DB {
	return &DB{
		roles:      make(map[id.UserID]models.Role),
		emails:     make(map[string]id.UserID),
		patients:   make(map[id.PatientID]models.Patient),
		doctors:    make(map[id.DoctorID]models.Doctor),
		cashiers:   make(map[id.CashierID]models.Cashier),
		operations: make(map[id.OperationID]models.Operation),
		reports:    make(map[id.ReportID]models.Report),
		reportByOp: make(map[id.OperationID]id.ReportID),
		payments:   make(map[id.PaymentID]models.Payment),
		receipts:   make(map[id.ReceiptID]models.Receipt),
		receiptBy:  make(map[id.PaymentID]id.ReceiptID),
	}
}

// claimUser reserves the email and assigns the next user identity.
// Caller holds the write lock.
func (db *DB) claimUser(u *models.User) bool {
	key := models.NormalizeEmail(u.Email)
	if _, taken := db.emails[key]; taken {
		return false
	}
	db.userSeq++
	u.ID = id.UserID(db.userSeq)
	db.emails[key] = u.ID
	db.roles[u.ID] = u.Role
	return true
}

func (db *DB) Patients() *PatientStore     { return &PatientStore{db: db} }
func (db *DB) Doctors() *DoctorStore       { return &DoctorStore{db: db} }
func (db *DB) Cashiers() *CashierStore     { return &CashierStore{db: db} }
func (db *DB) Users() *UserStore           { return &UserStore{db: db} }
func (db *DB) Operations() *OperationStore { return &OperationStore{db: db} }
func (db *DB) Reports() *ReportStore       { return &ReportStore{db: db} }
func (db *DB) Payments() *PaymentStore     { return &PaymentStore{db: db} }
func (db *DB) Receipts() *ReceiptStore     { return &ReceiptStore{db: db} }
