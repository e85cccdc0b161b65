package handler

import (
	"log/slog"
	"net/http"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

type NotificationHandler struct {
	inbox  ports.InboxService
	logger *slog.Logger
}

func NewNotificationHandler(inbox ports.InboxService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{inbox: inbox, logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	notifications, err := h.inbox.List(r.Context(), auth)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r, "notificationID")
	if !ok {
		badRequest(w, "invalid notification id")
		return
	}
	if err := h.inbox.MarkRead(r.Context(), auth, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
