package handler

import (
	"net/http"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/httputil"
)

func (h *Handler) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePatientRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid create patient request", err)
		return
	}
	patient, err := h.records.CreatePatient(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "failed to create patient", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, patient)
}

func (h *Handler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, id.ParsePatientID)
	if err != nil {
		h.writeError(w, r, "invalid patient id", err)
		return
	}
	patient, err := h.records.GetPatient(r.Context(), patientID)
	if err != nil {
		h.writeError(w, r, "failed to get patient", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, patient)
}

func (h *Handler) handleCreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDoctorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid create doctor request", err)
		return
	}
	doctor, err := h.records.CreateDoctor(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "failed to create doctor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doctor)
}

func (h *Handler) handleGetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathID(r, id.ParseDoctorID)
	if err != nil {
		h.writeError(w, r, "invalid doctor id", err)
		return
	}
	doctor, err := h.records.GetDoctor(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, r, "failed to get doctor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doctor)
}

func (h *Handler) handleCreateCashier(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCashierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid create cashier request", err)
		return
	}
	cashier, err := h.records.CreateCashier(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "failed to create cashier", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, cashier)
}

func (h *Handler) handleGetCashier(w http.ResponseWriter, r *http.Request) {
	cashierID, err := pathID(r, id.ParseCashierID)
	if err != nil {
		h.writeError(w, r, "invalid cashier id", err)
		return
	}
	cashier, err := h.records.GetCashier(r.Context(), cashierID)
	if err != nil {
		h.writeError(w, r, "failed to get cashier", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cashier)
}

func (h *Handler) handleActivateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, id.ParseUserID)
	if err != nil {
		h.writeError(w, r, "invalid user id", err)
		return
	}
	user, err := h.records.ActivateUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "failed to activate user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, id.ParseUserID)
	if err != nil {
		h.writeError(w, r, "invalid user id", err)
		return
	}
	user, err := h.records.DeactivateUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "failed to deactivate user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
