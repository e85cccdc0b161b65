package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

type AdminHandler struct {
	admin  ports.AdminService
	logger *slog.Logger
}

func NewAdminHandler(admin ports.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.admin.Stats)
}

func (h *AdminHandler) Donors(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.admin.Donors)
}

func (h *AdminHandler) Patients(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.admin.Patients)
}

func (h *AdminHandler) Requests(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.admin.Requests)
}

func (h *AdminHandler) Donations(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.admin.Donations)
}

func serve[T any](h *AdminHandler, w http.ResponseWriter, r *http.Request, load func(context.Context, domain.AuthContext) (T, error)) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	v, err := load(r.Context(), auth)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
