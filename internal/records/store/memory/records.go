package memory

import (
	"context"
	"sort"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/sentinel"
)

type OperationStore struct {
	db *DB
}

func (s *OperationStore) Create(_ context.Context, op *models.Operation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.operationSeq++
	op.ID = id.OperationID(s.db.operationSeq)
	s.db.operations[op.ID] = *op
	return nil
}

// Update replaces the mutable fields. Participant bindings are kept from the
// stored row.
func (s *OperationStore) Update(_ context.Context, op *models.Operation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing, ok := s.db.operations[op.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.Status = op.Status
	existing.Description = op.Description
	existing.ScheduledAt = op.ScheduledAt
	existing.UpdatedAt = op.UpdatedAt
	s.db.operations[op.ID] = existing
	return nil
}

func (s *OperationStore) FindByID(_ context.Context, operationID id.OperationID) (*models.Operation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	op, ok := s.db.operations[operationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &op, nil
}

type ReportStore struct {
	db *DB
}

// Create yields ErrAlreadyUsed when the operation already has a report.
func (s *ReportStore) Create(_ context.Context, r *models.Report) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, taken := s.db.reportByOp[r.OperationID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.db.reportSeq++
	r.ID = id.ReportID(s.db.reportSeq)
	s.db.reports[r.ID] = *r
	s.db.reportByOp[r.OperationID] = r.ID
	return nil
}

// Update yields ErrAlreadyUsed when moving the report onto an operation that
// another report holds.
func (s *ReportStore) Update(_ context.Context, r *models.Report) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing, ok := s.db.reports[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if holder, taken := s.db.reportByOp[r.OperationID]; taken && holder != r.ID {
		return sentinel.ErrAlreadyUsed
	}
	if existing.OperationID != r.OperationID {
		delete(s.db.reportByOp, existing.OperationID)
		s.db.reportByOp[r.OperationID] = r.ID
	}
	updated := *r
	updated.CreatedAt = existing.CreatedAt
	s.db.reports[r.ID] = updated
	return nil
}

func (s *ReportStore) FindByID(_ context.Context, reportID id.ReportID) (*models.Report, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	r, ok := s.db.reports[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *ReportStore) FindByOperationID(_ context.Context, operationID id.OperationID) (*models.Report, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	reportID, ok := s.db.reportByOp[operationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	r := s.db.reports[reportID]
	return &r, nil
}

// ListByPatient returns the patient's reports ordered by id.
func (s *ReportStore) ListByPatient(_ context.Context, patientID id.PatientID) ([]*models.Report, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]*models.Report, 0)
	for _, r := range s.db.reports {
		if r.PatientID == patientID {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type PaymentStore struct {
	db *DB
}

func (s *PaymentStore) Create(_ context.Context, p *models.Payment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.paymentSeq++
	p.ID = id.PaymentID(s.db.paymentSeq)
	s.db.payments[p.ID] = *p
	return nil
}

func (s *PaymentStore) FindByID(_ context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	p, ok := s.db.payments[paymentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

type ReceiptStore struct {
	db *DB
}

// Create yields ErrAlreadyUsed when the payment already has a receipt.
func (s *ReceiptStore) Create(_ context.Context, r *models.Receipt) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, taken := s.db.receiptBy[r.PaymentID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.db.receiptSeq++
	r.ID = id.ReceiptID(s.db.receiptSeq)
	s.db.receipts[r.ID] = *r
	s.db.receiptBy[r.PaymentID] = r.ID
	return nil
}

func (s *ReceiptStore) FindByID(_ context.Context, receiptID id.ReceiptID) (*models.Receipt, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	r, ok := s.db.receipts[receiptID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *ReceiptStore) ExistsByPaymentID(_ context.Context, paymentID id.PaymentID) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	_, ok := s.db.receiptBy[paymentID]
	return ok, nil
}

// CountByPaymentID is used by tests asserting that a rejected emission left
// no second receipt behind.
func (s *ReceiptStore) CountByPaymentID(_ context.Context, paymentID id.PaymentID) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	n := 0
	for _, r := range s.db.receipts {
		if r.PaymentID == paymentID {
			n++
		}
	}
	return n, nil
}
