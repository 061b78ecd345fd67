package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	recordsmetrics "clinic/internal/records/metrics"
	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/audit"
	"clinic/pkg/platform/middleware/metadata"
	"clinic/pkg/requestcontext"
)

type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindByID(ctx context.Context, patientID id.PatientID) (*models.Patient, error)
}

type DoctorStore interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	FindByID(ctx context.Context, doctorID id.DoctorID) (*models.Doctor, error)
}

type CashierStore interface {
	Create(ctx context.Context, cashier *models.Cashier) error
	FindByID(ctx context.Context, cashierID id.CashierID) (*models.Cashier, error)
}

// UserStore reaches the shared user fields behind any role.
// Execute holds the row (mutex or FOR UPDATE) across validate and mutate.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error)
}

type OperationStore interface {
	Create(ctx context.Context, op *models.Operation) error
	Update(ctx context.Context, op *models.Operation) error
	FindByID(ctx context.Context, operationID id.OperationID) (*models.Operation, error)
}

type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	Update(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	FindByOperationID(ctx context.Context, operationID id.OperationID) (*models.Report, error)
	ListByPatient(ctx context.Context, patientID id.PatientID) ([]*models.Report, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error)
}

type ReceiptStore interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	FindByID(ctx context.Context, receiptID id.ReceiptID) (*models.Receipt, error)
	ExistsByPaymentID(ctx context.Context, paymentID id.PaymentID) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// StoreTx provides a transactional boundary for record mutations.
// Implementations may wrap a database transaction or, in-memory, a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores groups the record stores the service reads and writes.
type Stores struct {
	Patients   PatientStore
	Doctors    DoctorStore
	Cashiers   CashierStore
	Users      UserStore
	Operations OperationStore
	Reports    ReportStore
	Payments   PaymentStore
	Receipts   ReceiptStore
}

// Service runs record requests through the consistency engine: resolve
// references, check consistency, guard uniqueness, then write.
type Service struct {
	patients   PatientStore
	doctors    DoctorStore
	cashiers   CashierStore
	users      UserStore
	operations OperationStore
	reports    ReportStore
	payments   PaymentStore
	receipts   ReceiptStore

	tx             StoreTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *recordsmetrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *recordsmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transaction boundary. Defaults to an in-memory lock.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service over stores.
func New(stores Stores, opts ...Option) *Service {
	s := &Service{
		patients:   stores.Patients,
		doctors:    stores.Doctors,
		cashiers:   stores.Cashiers,
		users:      stores.Users,
		operations: stores.Operations,
		reports:    stores.Reports,
		payments:   stores.Payments,
		receipts:   stores.Receipts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = &inMemoryStoreTx{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("clinic/internal/records/service")
	}
	return s
}

// inMemoryStoreTx serializes units of work so check-then-act is atomic
// against the in-memory stores.
type inMemoryStoreTx struct {
	mu sync.Mutex
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// startSpan opens a span and returns a finish func that records the
// outcome, the duration metric and, for engine rejections, the violation
// counter.
func (s *Service) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "records."+op, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		defer span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(op, start)
		}
		if errp == nil || *errp == nil {
			return
		}
		err := *errp
		code := dErrors.CodeOf(err)
		span.SetAttributes(attribute.String("error.code", string(code)))
		if code == dErrors.CodeInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if isEngineRejection(code) && s.metrics != nil {
			s.metrics.IncrementViolation(string(code))
		}
	}
}

func isEngineRejection(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeMismatch, dErrors.CodeAlreadyExists, dErrors.CodeInvalidTransition:
		return true
	}
	return false
}

// emitAudit logs the event and hands it to the publisher. Called inside the
// unit of work so a failed append aborts the write it describes.
func (s *Service) emitAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, kind models.Kind, entityID int64) error {
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"event", string(event),
			"log_type", "audit",
			"user_id", int64(userID),
			"entity_kind", string(kind),
			"entity_id", entityID,
			"request_id", requestID,
			"client_ip", metadata.ClientIP(ctx),
		)
	}
	if s.auditPublisher == nil {
		return nil
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp:  requestcontext.Now(ctx),
		UserID:     userID,
		Action:     string(event),
		EntityKind: string(kind),
		EntityID:   entityID,
		RequestID:  requestID,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (s *Service) incrementCreated(kind models.Kind) {
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(kind))
	}
}
