// Package postgres holds the PostgreSQL record stores.
//
// Every statement runs on the transaction carried in ctx when one is present,
// so a service unit of work (resolve, guard, write, audit) commits or rolls
// back as one. Unique index violations surface as sentinel.ErrAlreadyUsed
// whichever driver ("pgx" or "postgres") opened the pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"clinic/pkg/platform/sentinel"
	txcontext "clinic/pkg/platform/tx"
)

const uniqueViolation = "23505"

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type base struct {
	db *sql.DB
}

func (b base) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return b.db
}

// Stores bundles the record stores over one pool.
type Stores struct {
	db *sql.DB
}

func New(db *sql.DB) *Stores {
	return &Stores{db: db}
}

func (s *Stores) Patients() *PatientStore     { return &PatientStore{base{s.db}} }
func (s *Stores) Doctors() *DoctorStore       { return &DoctorStore{base{s.db}} }
func (s *Stores) Cashiers() *CashierStore     { return &CashierStore{base{s.db}} }
func (s *Stores) Users() *UserStore           { return &UserStore{base{s.db}} }
func (s *Stores) Operations() *OperationStore { return &OperationStore{base{s.db}} }
func (s *Stores) Reports() *ReportStore       { return &ReportStore{base{s.db}} }
func (s *Stores) Payments() *PaymentStore     { return &PaymentStore{base{s.db}} }
func (s *Stores) Receipts() *ReceiptStore     { return &ReceiptStore{base{s.db}} }

// RunInTx opens a transaction and carries it in ctx for the stores above.
func (s *Stores) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, s.db, fn)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
