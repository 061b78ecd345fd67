package postgres

import (
	"context"
	"fmt"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/sentinel"
)

type OperationStore struct {
	base
}

func (s *OperationStore) Create(ctx context.Context, op *models.Operation) error {
	query := `
		INSERT INTO operations (patient_id, doctor_id, status, description, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		int64(op.PatientID), int64(op.DoctorID), string(op.Status), op.Description,
		op.ScheduledAt, op.CreatedAt, op.UpdatedAt,
	).Scan(&op.ID)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// Update writes the mutable columns only; patient_id and doctor_id are never
// part of the statement.
func (s *OperationStore) Update(ctx context.Context, op *models.Operation) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE operations SET status = $2, description = $3, scheduled_at = $4, updated_at = $5 WHERE id = $1`,
		int64(op.ID), string(op.Status), op.Description, op.ScheduledAt, op.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update operation: %w", err)
	}
	return requireRow(res)
}

func (s *OperationStore) FindByID(ctx context.Context, operationID id.OperationID) (*models.Operation, error) {
	query := `
		SELECT id, patient_id, doctor_id, status, description, scheduled_at, created_at, updated_at
		FROM operations
		WHERE id = $1
	`
	var op models.Operation
	err := s.execer(ctx).QueryRowContext(ctx, query, int64(operationID)).Scan(
		&op.ID, &op.PatientID, &op.DoctorID, &op.Status, &op.Description,
		&op.ScheduledAt, &op.CreatedAt, &op.UpdatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find operation: %w", err)
	}
	return &op, nil
}

type ReportStore struct {
	base
}

const reportColumns = `id, operation_id, patient_id, doctor_id, content, created_at, updated_at`

func (s *ReportStore) Create(ctx context.Context, r *models.Report) error {
	query := `
		INSERT INTO reports (operation_id, patient_id, doctor_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		int64(r.OperationID), int64(r.PatientID), int64(r.DoctorID), r.Content, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *ReportStore) Update(ctx context.Context, r *models.Report) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE reports SET operation_id = $2, patient_id = $3, doctor_id = $4, content = $5, updated_at = $6 WHERE id = $1`,
		int64(r.ID), int64(r.OperationID), int64(r.PatientID), int64(r.DoctorID), r.Content, r.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update report: %w", err)
	}
	return requireRow(res)
}

func (s *ReportStore) FindByID(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	return s.findOne(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, int64(reportID))
}

func (s *ReportStore) FindByOperationID(ctx context.Context, operationID id.OperationID) (*models.Report, error) {
	return s.findOne(ctx, `SELECT `+reportColumns+` FROM reports WHERE operation_id = $1`, int64(operationID))
}

func (s *ReportStore) ListByPatient(ctx context.Context, patientID id.PatientID) ([]*models.Report, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE patient_id = $1 ORDER BY id`,
		int64(patientID),
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Report, 0)
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.OperationID, &r.PatientID, &r.DoctorID, &r.Content, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

func (s *ReportStore) findOne(ctx context.Context, query string, arg int64) (*models.Report, error) {
	var r models.Report
	err := s.execer(ctx).QueryRowContext(ctx, query, arg).Scan(
		&r.ID, &r.OperationID, &r.PatientID, &r.DoctorID, &r.Content, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &r, nil
}

type PaymentStore struct {
	base
}

func (s *PaymentStore) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (patient_id, cashier_id, amount_cents, method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		int64(p.PatientID), int64(p.CashierID), p.AmountCents, string(p.Method), string(p.Status),
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PaymentStore) FindByID(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	query := `
		SELECT id, patient_id, cashier_id, amount_cents, method, status, created_at, updated_at
		FROM payments
		WHERE id = $1
	`
	var p models.Payment
	err := s.execer(ctx).QueryRowContext(ctx, query, int64(paymentID)).Scan(
		&p.ID, &p.PatientID, &p.CashierID, &p.AmountCents, &p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &p, nil
}

type ReceiptStore struct {
	base
}

func (s *ReceiptStore) Create(ctx context.Context, r *models.Receipt) error {
	err := s.execer(ctx).QueryRowContext(ctx,
		`INSERT INTO receipts (payment_id, number, issued_at) VALUES ($1, $2, $3) RETURNING id`,
		int64(r.PaymentID), r.Number, r.IssuedAt,
	).Scan(&r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (s *ReceiptStore) FindByID(ctx context.Context, receiptID id.ReceiptID) (*models.Receipt, error) {
	var r models.Receipt
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, payment_id, number, issued_at FROM receipts WHERE id = $1`,
		int64(receiptID),
	).Scan(&r.ID, &r.PaymentID, &r.Number, &r.IssuedAt)
	if err != nil {
		if notFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find receipt: %w", err)
	}
	return &r, nil
}

func (s *ReceiptStore) ExistsByPaymentID(ctx context.Context, paymentID id.PaymentID) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM receipts WHERE payment_id = $1)`,
		int64(paymentID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check receipt: %w", err)
	}
	return exists, nil
}

func (s *ReceiptStore) CountByPaymentID(ctx context.Context, paymentID id.PaymentID) (int, error) {
	var n int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT count(*) FROM receipts WHERE payment_id = $1`,
		int64(paymentID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count receipts: %w", err)
	}
	return n, nil
}
