package handler

import (
	"net/http"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/httputil"
)

type reportListResponse struct {
	Reports []*models.Report `json:"reports"`
}

func (h *Handler) handleCreateOperation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOperationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid create operation request", err)
		return
	}
	op, err := h.records.CreateOperation(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "failed to create operation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, op)
}

func (h *Handler) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	operationID, err := pathID(r, id.ParseOperationID)
	if err != nil {
		h.writeError(w, r, "invalid operation id", err)
		return
	}
	op, err := h.records.GetOperation(r.Context(), operationID)
	if err != nil {
		h.writeError(w, r, "failed to get operation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, op)
}

func (h *Handler) handleUpdateOperationStatus(w http.ResponseWriter, r *http.Request) {
	operationID, err := pathID(r, id.ParseOperationID)
	if err != nil {
		h.writeError(w, r, "invalid operation id", err)
		return
	}
	var req models.UpdateOperationStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid operation status request", err)
		return
	}
	op, err := h.records.UpdateOperationStatus(r.Context(), operationID, req.Status)
	if err != nil {
		h.writeError(w, r, "failed to update operation status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, op)
}

func (h *Handler) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid create report request", err)
		return
	}
	report, err := h.records.CreateReport(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "failed to create report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, id.ParseReportID)
	if err != nil {
		h.writeError(w, r, "invalid report id", err)
		return
	}
	var req models.ReportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid update report request", err)
		return
	}
	report, err := h.records.UpdateReport(r.Context(), reportID, &req)
	if err != nil {
		h.writeError(w, r, "failed to update report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, id.ParseReportID)
	if err != nil {
		h.writeError(w, r, "invalid report id", err)
		return
	}
	report, err := h.records.GetReport(r.Context(), reportID)
	if err != nil {
		h.writeError(w, r, "failed to get report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleListPatientReports(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, id.ParsePatientID)
	if err != nil {
		h.writeError(w, r, "invalid patient id", err)
		return
	}
	reports, err := h.records.ListReportsByPatient(r.Context(), patientID)
	if err != nil {
		h.writeError(w, r, "failed to list reports", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reportListResponse{Reports: reports})
}

func (h *Handler) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid create payment request", err)
		return
	}
	payment, err := h.records.CreatePayment(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "failed to create payment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, id.ParsePaymentID)
	if err != nil {
		h.writeError(w, r, "invalid payment id", err)
		return
	}
	payment, err := h.records.GetPayment(r.Context(), paymentID)
	if err != nil {
		h.writeError(w, r, "failed to get payment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) handleEmitReceipt(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, id.ParsePaymentID)
	if err != nil {
		h.writeError(w, r, "invalid payment id", err)
		return
	}
	receipt, err := h.records.EmitReceipt(r.Context(), paymentID)
	if err != nil {
		h.writeError(w, r, "failed to emit receipt", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receiptID, err := pathID(r, id.ParseReceiptID)
	if err != nil {
		h.writeError(w, r, "invalid receipt id", err)
		return
	}
	receipt, err := h.records.GetReceipt(r.Context(), receiptID)
	if err != nil {
		h.writeError(w, r, "failed to get receipt", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}
