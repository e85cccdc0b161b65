package handler

import (
	"log/slog"
	"net/http"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

type DonorHandler struct {
	dashboards ports.DashboardService
	lifecycle  ports.LifecycleService
	profiles   ports.ProfileService
	logger     *slog.Logger
}

func NewDonorHandler(
	dashboards ports.DashboardService,
	lifecycle ports.LifecycleService,
	profiles ports.ProfileService,
	logger *slog.Logger,
) *DonorHandler {
	return &DonorHandler{dashboards: dashboards, lifecycle: lifecycle, profiles: profiles, logger: logger}
}

type AvailabilityRequest struct {
	Availability domain.Availability `json:"availability_status"`
}

func (h *DonorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	view, err := h.dashboards.DonorDashboard(r.Context(), auth)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DonorHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	var in ports.DonorProfileInput
	if !decode(w, r, &in) {
		return
	}
	donor, err := h.profiles.CompleteDonorProfile(r.Context(), auth, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, donor)
}

func (h *DonorHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	var in AvailabilityRequest
	if !decode(w, r, &in) {
		return
	}
	if err := h.profiles.SetAvailability(r.Context(), auth, in.Availability); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DonorHandler) Approve(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	requestID, ok := idParam(r, "requestID")
	if !ok {
		badRequest(w, "invalid request id")
		return
	}
	donation, err := h.lifecycle.Approve(r.Context(), auth, requestID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}
