package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic/internal/platform/metrics"
	"clinic/internal/records/handler"
	"clinic/internal/records/service"
	"clinic/internal/records/store/memory"
	"clinic/pkg/platform/audit"
	auditmemory "clinic/pkg/platform/audit/store/memory"
	"clinic/pkg/testutil"
)

func newClinicRouter(t *testing.T) (chi.Router, *auditmemory.InMemoryStore) {
	t.Helper()
	db := memory.New()
	auditStore := auditmemory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := service.New(service.Stores{
		Patients:   db.Patients(),
		Doctors:    db.Doctors(),
		Cashiers:   db.Cashiers(),
		Users:      db.Users(),
		Operations: db.Operations(),
		Reports:    db.Reports(),
		Payments:   db.Payments(),
		Receipts:   db.Receipts(),
	}, service.WithLogger(logger), service.WithAuditPublisher(audit.NewPublisher(auditStore)))

	r := chi.NewRouter()
	handler.New(records, logger, metrics.New(prometheus.NewRegistry()), time.Second).Register(r)
	return r, auditStore
}

func post(t *testing.T, r http.Handler, path string, body any) (int, map[string]any) {
	t.Helper()
	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, body))
	if rr.Body.Len() == 0 {
		return rr.Code, nil
	}
	return rr.Code, *testutil.UnmarshalResponse[map[string]any](t, rr)
}

func idOf(t *testing.T, body map[string]any) float64 {
	t.Helper()
	v, ok := body["id"].(float64)
	require.True(t, ok, "response has no numeric id: %v", body)
	return v
}

func formatID(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}

func TestClinicFlow(t *testing.T) {
	testutil.Given(t, "a clinic with a patient, a doctor, a cashier and one operation", func(t *testing.T) {
		r, auditStore := newClinicRouter(t)

		code, patient := post(t, r, "/patients", map[string]any{
			"name": "Ana", "email": "ana@clinic.test", "birth_date": "1988-04-12",
		})
		require.Equal(t, http.StatusCreated, code)
		code, doctor := post(t, r, "/doctors", map[string]any{
			"name": "Dr. Lee", "email": "lee@clinic.test", "specialty": "orthopedics", "license_number": "CRM-1",
		})
		require.Equal(t, http.StatusCreated, code)
		code, cashier := post(t, r, "/cashiers", map[string]any{"name": "Rui", "email": "rui@clinic.test"})
		require.Equal(t, http.StatusCreated, code)
		code, other := post(t, r, "/patients", map[string]any{
			"name": "Bea", "email": "bea@clinic.test", "birth_date": "1990-02-01",
		})
		require.Equal(t, http.StatusCreated, code)

		code, op := post(t, r, "/operations", map[string]any{
			"patient_id": idOf(t, patient), "doctor_id": idOf(t, doctor), "description": "knee arthroscopy",
		})
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "SCHEDULED", op["status"])

		report := map[string]any{
			"operation_id": idOf(t, op), "patient_id": idOf(t, patient), "doctor_id": idOf(t, doctor), "content": "uneventful",
		}

		testutil.When(t, "the report names another patient", func(t *testing.T) {
			mismatched := map[string]any{
				"operation_id": idOf(t, op), "patient_id": idOf(t, other), "doctor_id": idOf(t, doctor), "content": "x",
			}
			rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/reports", mismatched))

			testutil.Then(t, "it is rejected as a mismatch", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "reference_mismatch")
			})
		})

		testutil.When(t, "two reports are filed for the operation", func(t *testing.T) {
			first, _ := post(t, r, "/reports", report)
			rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/reports", report))

			testutil.Then(t, "only the first is accepted", func(t *testing.T) {
				assert.Equal(t, http.StatusCreated, first)
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_exists")
			})
		})

		testutil.When(t, "a receipt is emitted twice for one payment", func(t *testing.T) {
			code, payment := post(t, r, "/payments", map[string]any{
				"patient_id": idOf(t, patient), "cashier_id": idOf(t, cashier), "amount_cents": 25000, "method": "card",
			})
			require.Equal(t, http.StatusCreated, code)
			path := "/payments/" + formatID(idOf(t, payment)) + "/receipt"
			first, _ := post(t, r, path, nil)
			rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, nil))

			testutil.Then(t, "the second is rejected", func(t *testing.T) {
				assert.Equal(t, http.StatusCreated, first)
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_exists")
			})
		})

		testutil.When(t, "a doctor is deactivated twice", func(t *testing.T) {
			path := "/users/" + formatID(idOf(t, doctor)) + "/deactivate"
			rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, nil))
			again := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, nil))

			testutil.Then(t, "the repeat is an invalid transition", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				testutil.AssertJSONContains(t, rr, "active", false)
				testutil.AssertStatusAndError(t, again, http.StatusBadRequest, "invalid_transition")
			})
		})

		testutil.When(t, "a cashier registers with a patient's email in another case", func(t *testing.T) {
			rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/cashiers",
				map[string]any{"name": "Ana Two", "email": "ANA@clinic.test"}))

			testutil.Then(t, "the email is already taken", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_exists")
			})
		})

		testutil.Then(t, "accepted writes were audited", func(t *testing.T) {
			events, err := auditStore.ListAll(context.Background())
			require.NoError(t, err)
			actions := make(map[string]int)
			for _, e := range events {
				actions[e.Action]++
				assert.NotEmpty(t, e.RequestID)
			}
			assert.Equal(t, 1, actions[string(audit.EventReportCreated)])
			assert.Equal(t, 1, actions[string(audit.EventReceiptEmitted)])
			assert.Equal(t, 1, actions[string(audit.EventUserDeactivated)])
		})

	})
}
