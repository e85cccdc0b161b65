package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

// RouterDeps collects what NewRouter mounts.
type RouterDeps struct {
	Auth           *middleware.AuthMiddleware
	Donor          *DonorHandler
	Patient        *PatientHandler
	Notifications  *NotificationHandler
	Admin          *AdminHandler
	Health         *HealthHandler
	Metrics        http.Handler
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", d.Health.Health)
		r.Get("/live", d.Health.Live)
		r.Get("/ready", d.Health.Ready)
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/donor", func(r chi.Router) {
		r.Use(d.Auth.RequireRole(domain.RoleDonor))
		r.Get("/dashboard", d.Donor.Dashboard)
		r.Post("/profile", d.Donor.CompleteProfile)
		r.Put("/availability", d.Donor.SetAvailability)
		r.Post("/requests/{requestID}/approve", d.Donor.Approve)
	})

	r.Route("/patient", func(r chi.Router) {
		r.Use(d.Auth.RequireRole(domain.RolePatient))
		r.Get("/dashboard", d.Patient.Dashboard)
		r.Post("/profile", d.Patient.CompleteProfile)
		r.Post("/requests", d.Patient.CreateRequest)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(d.Auth.RequireRole())
		r.Get("/", d.Notifications.List)
		r.Post("/{notificationID}/read", d.Notifications.MarkRead)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(d.Auth.RequireRole(domain.RoleAdmin))
		r.Get("/stats", d.Admin.Stats)
		r.Get("/donors", d.Admin.Donors)
		r.Get("/patients", d.Admin.Patients)
		r.Get("/requests", d.Admin.Requests)
		r.Get("/donations", d.Admin.Donations)
	})

	return r
}
