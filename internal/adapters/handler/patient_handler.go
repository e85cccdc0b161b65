package handler

import (
	"log/slog"
	"net/http"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

type PatientHandler struct {
	dashboards ports.DashboardService
	profiles   ports.ProfileService
	logger     *slog.Logger
}

func NewPatientHandler(dashboards ports.DashboardService, profiles ports.ProfileService, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{dashboards: dashboards, profiles: profiles, logger: logger}
}

func (h *PatientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	view, err := h.dashboards.PatientDashboard(r.Context(), auth)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *PatientHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	var in ports.PatientProfileInput
	if !decode(w, r, &in) {
		return
	}
	patient, err := h.profiles.CompletePatientProfile(r.Context(), auth, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, patient)
}

func (h *PatientHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	var in ports.BloodRequestInput
	if !decode(w, r, &in) {
		return
	}
	req, err := h.profiles.CreateBloodRequest(r.Context(), auth, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}
