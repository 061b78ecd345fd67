package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clinic/internal/platform/metrics"
	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/httputil"
	"clinic/pkg/platform/middleware/metadata"
	"clinic/pkg/platform/middleware/requesttime"
	"clinic/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the record operations the HTTP layer calls.
type Service interface {
	CreatePatient(ctx context.Context, req *models.CreatePatientRequest) (*models.Patient, error)
	CreateDoctor(ctx context.Context, req *models.CreateDoctorRequest) (*models.Doctor, error)
	CreateCashier(ctx context.Context, req *models.CreateCashierRequest) (*models.Cashier, error)
	GetPatient(ctx context.Context, patientID id.PatientID) (*models.Patient, error)
	GetDoctor(ctx context.Context, doctorID id.DoctorID) (*models.Doctor, error)
	GetCashier(ctx context.Context, cashierID id.CashierID) (*models.Cashier, error)
	ActivateUser(ctx context.Context, userID id.UserID) (*models.User, error)
	DeactivateUser(ctx context.Context, userID id.UserID) (*models.User, error)

	CreateOperation(ctx context.Context, req *models.CreateOperationRequest) (*models.Operation, error)
	GetOperation(ctx context.Context, operationID id.OperationID) (*models.Operation, error)
	UpdateOperationStatus(ctx context.Context, operationID id.OperationID, status string) (*models.Operation, error)

	CreateReport(ctx context.Context, req *models.ReportRequest) (*models.Report, error)
	UpdateReport(ctx context.Context, reportID id.ReportID, req *models.ReportRequest) (*models.Report, error)
	GetReport(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	ListReportsByPatient(ctx context.Context, patientID id.PatientID) ([]*models.Report, error)

	CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*models.Payment, error)
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error)
	EmitReceipt(ctx context.Context, paymentID id.PaymentID) (*models.Receipt, error)
	GetReceipt(ctx context.Context, receiptID id.ReceiptID) (*models.Receipt, error)
}

// Handler serves the record endpoints.
type Handler struct {
	logger         *slog.Logger
	records        Service
	metrics        *metrics.Metrics
	requestTimeout time.Duration
}

// New creates a new records Handler. A zero requestTimeout uses 30s.
func New(records Service, logger *slog.Logger, metrics *metrics.Metrics, requestTimeout time.Duration) *Handler {
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handler{
		logger:         logger,
		records:        records,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	recordsRouter := chi.NewRouter()
	recordsRouter.Use(middleware.RequestID)
	recordsRouter.Use(middleware.Recoverer)
	recordsRouter.Use(requesttime.Middleware)
	recordsRouter.Use(metadata.ClientMetadata)
	recordsRouter.Use(middleware.Timeout(h.requestTimeout))
	recordsRouter.Use(h.metrics.LatencyMiddleware)

	recordsRouter.Post("/patients", h.handleCreatePatient)
	recordsRouter.Get("/patients/{id}", h.handleGetPatient)
	recordsRouter.Get("/patients/{id}/reports", h.handleListPatientReports)
	recordsRouter.Post("/doctors", h.handleCreateDoctor)
	recordsRouter.Get("/doctors/{id}", h.handleGetDoctor)
	recordsRouter.Post("/cashiers", h.handleCreateCashier)
	recordsRouter.Get("/cashiers/{id}", h.handleGetCashier)
	recordsRouter.Post("/users/{id}/activate", h.handleActivateUser)
	recordsRouter.Post("/users/{id}/deactivate", h.handleDeactivateUser)

	recordsRouter.Post("/operations", h.handleCreateOperation)
	recordsRouter.Get("/operations/{id}", h.handleGetOperation)
	recordsRouter.Patch("/operations/{id}/status", h.handleUpdateOperationStatus)

	recordsRouter.Post("/reports", h.handleCreateReport)
	recordsRouter.Get("/reports/{id}", h.handleGetReport)
	recordsRouter.Put("/reports/{id}", h.handleUpdateReport)

	recordsRouter.Post("/payments", h.handleCreatePayment)
	recordsRouter.Get("/payments/{id}", h.handleGetPayment)
	recordsRouter.Post("/payments/{id}/receipt", h.handleEmitReceipt)
	recordsRouter.Get("/receipts/{id}", h.handleGetReceipt)

	r.Mount("/", recordsRouter)
}

// writeError logs client errors at warn and everything else at error, then
// renders the coded body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error_code", string(code),
		"error", err.Error(),
	}
	if httputil.StatusFor(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

// pathID parses the {id} URL parameter with parse.
func pathID[T any](r *http.Request, parse func(string) (T, error)) (T, error) {
	return parse(chi.URLParam(r, "id"))
}
