package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"clinic/internal/platform/metrics"
	"clinic/internal/records/handler/mocks"
	"clinic/internal/records/models"
	id "clinic/pkg/domain"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	records *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.records = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.records, logger, metrics.New(prometheus.NewRegistry()), time.Second)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *HandlerSuite) decodeError(rr *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	s.Require().NoError(json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func (s *HandlerSuite) TestCreateReport() {
	s.Run("created", func() {
		s.records.EXPECT().CreateReport(gomock.Any(), &models.ReportRequest{
			OperationID: 5, PatientID: 1, DoctorID: 2, Content: "ok",
		}).Return(&models.Report{ID: 10, OperationID: 5, PatientID: 1, DoctorID: 2, Content: "ok"}, nil)

		rr := s.do(http.MethodPost, "/reports", `{"operation_id":5,"patient_id":1,"doctor_id":2,"content":"ok"}`)
		s.Equal(http.StatusCreated, rr.Code)

		var got models.Report
		s.Require().NoError(json.NewDecoder(rr.Body).Decode(&got))
		s.Equal(id.ReportID(10), got.ID)
	})

	s.Run("second report for the operation conflicts", func() {
		s.records.EXPECT().CreateReport(gomock.Any(), gomock.Any()).
			Return(nil, &models.AlreadyExistsError{Key: models.KeyOperation, Value: "5"})

		rr := s.do(http.MethodPost, "/reports", `{"operation_id":5,"patient_id":1,"doctor_id":2,"content":"again"}`)
		s.Equal(http.StatusConflict, rr.Code)
		body := s.decodeError(rr)
		s.Equal("already_exists", body["error"])
		s.Equal("a report already exists for operation 5", body["error_description"])
	})

	s.Run("participant mismatch is unprocessable", func() {
		s.records.EXPECT().CreateReport(gomock.Any(), gomock.Any()).
			Return(nil, &models.MismatchError{Role: models.RolePatientMismatch, ExpectedID: 1, ActualID: 3})

		rr := s.do(http.MethodPost, "/reports", `{"operation_id":5,"patient_id":3,"doctor_id":2,"content":"x"}`)
		s.Equal(http.StatusUnprocessableEntity, rr.Code)
		s.Equal("reference_mismatch", s.decodeError(rr)["error"])
	})

	s.Run("unknown fields are rejected before the service", func() {
		rr := s.do(http.MethodPost, "/reports", `{"operation_id":5,"surgeon":"x"}`)
		s.Equal(http.StatusBadRequest, rr.Code)
		s.Equal("bad_request", s.decodeError(rr)["error"])
	})
}

func (s *HandlerSuite) TestUpdateReport() {
	s.records.EXPECT().UpdateReport(gomock.Any(), id.ReportID(10), gomock.Any()).
		Return(nil, &models.NotFoundError{Kind: models.KindOperation, ID: 6})

	rr := s.do(http.MethodPut, "/reports/10", `{"operation_id":6,"patient_id":1,"doctor_id":2,"content":"moved"}`)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal("operation 6 not found", s.decodeError(rr)["error_description"])
}

func (s *HandlerSuite) TestListPatientReports() {
	s.records.EXPECT().ListReportsByPatient(gomock.Any(), id.PatientID(1)).
		Return([]*models.Report{{ID: 10}, {ID: 11}}, nil)

	rr := s.do(http.MethodGet, "/patients/1/reports", "")
	s.Equal(http.StatusOK, rr.Code)

	var got reportListResponse
	s.Require().NoError(json.NewDecoder(rr.Body).Decode(&got))
	s.Len(got.Reports, 2)
}

func (s *HandlerSuite) TestPathIDs() {
	for _, path := range []string{"/patients/abc", "/reports/0", "/receipts/-1", "/operations/1%20"} {
		rr := s.do(http.MethodGet, path, "")
		s.Equal(http.StatusBadRequest, rr.Code, path)
		s.Equal("invalid_input", s.decodeError(rr)["error"], path)
	}
}

func (s *HandlerSuite) TestEmitReceipt() {
	s.Run("first receipt", func() {
		s.records.EXPECT().EmitReceipt(gomock.Any(), id.PaymentID(1)).
			Return(&models.Receipt{ID: 1, PaymentID: 1, Number: "r-1"}, nil)
		rr := s.do(http.MethodPost, "/payments/1/receipt", "")
		s.Equal(http.StatusCreated, rr.Code)
	})

	s.Run("duplicate receipt", func() {
		s.records.EXPECT().EmitReceipt(gomock.Any(), id.PaymentID(1)).
			Return(nil, &models.AlreadyExistsError{Key: models.KeyPayment, Value: "1"})
		rr := s.do(http.MethodPost, "/payments/1/receipt", "")
		s.Equal(http.StatusConflict, rr.Code)
	})
}

func (s *HandlerSuite) TestLifecycle() {
	s.Run("deactivate", func() {
		s.records.EXPECT().DeactivateUser(gomock.Any(), id.UserID(4)).
			Return(&models.User{ID: 4, Active: false}, nil)
		rr := s.do(http.MethodPost, "/users/4/deactivate", "")
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("activating an active user", func() {
		s.records.EXPECT().ActivateUser(gomock.Any(), id.UserID(4)).
			Return(nil, &models.InvalidTransitionError{Reason: "already active"})
		rr := s.do(http.MethodPost, "/users/4/activate", "")
		s.Equal(http.StatusBadRequest, rr.Code)
		s.Equal("invalid_transition", s.decodeError(rr)["error"])
	})
}

func (s *HandlerSuite) TestUpdateOperationStatus() {
	s.records.EXPECT().UpdateOperationStatus(gomock.Any(), id.OperationID(5), "COMPLETED").
		Return(&models.Operation{ID: 5, Status: models.OperationCompleted}, nil)

	rr := s.do(http.MethodPatch, "/operations/5/status", `{"status":"COMPLETED"}`)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *HandlerSuite) TestCreatePatient() {
	s.records.EXPECT().CreatePatient(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *models.CreatePatientRequest) (*models.Patient, error) {
			s.Equal("1990-02-01", req.BirthDate)
			return &models.Patient{User: models.User{ID: 1, Role: models.RolePatient, Name: req.Name, Active: true}}, nil
		})

	rr := s.do(http.MethodPost, "/patients", `{"name":"Bea","email":"bea@clinic.test","birth_date":"1990-02-01"}`)
	s.Equal(http.StatusCreated, rr.Code)
}

func (s *HandlerSuite) TestInternalErrorsHideDetails() {
	s.records.EXPECT().GetPayment(gomock.Any(), id.PaymentID(2)).
		Return(nil, errors.New("connection refused"))

	rr := s.do(http.MethodGet, "/payments/2", "")
	s.Equal(http.StatusInternalServerError, rr.Code)
	body := s.decodeError(rr)
	s.Equal("internal_error", body["error"])
	s.Empty(body["error_description"])
}
