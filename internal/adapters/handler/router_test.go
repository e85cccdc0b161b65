package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/metrics"
	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/services"
	"github.com/AchilleasB/blood-portal/matching-service/internal/mocks"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

type stubBreaker struct{ state gobreaker.State }

func (b *stubBreaker) BreakerState() gobreaker.State { return b.state }

type testServer struct {
	t       *testing.T
	store   *mocks.MemoryStore
	redis   *mocks.MockRedisClient
	breaker *stubBreaker
	key     *rsa.PrivateKey
	handler http.Handler

	donorUser, patientUser, adminUser domain.User
	donor                             domain.Donor
	patient                           domain.Patient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := mocks.NewMemoryStore()
	redis := mocks.NewMockRedisClient()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	matcher := services.NewMatcher(store, m)
	dashboards := services.NewDashboardService(store, store, matcher, services.NewNotifier(store), m, logger)
	lifecycle := services.NewLifecycleManager(store, store, m, logger)
	profiles := services.NewProfileService(store, store)

	s := &testServer{t: t, store: store, redis: redis, breaker: &stubBreaker{state: gobreaker.StateClosed}, key: key}
	s.handler = NewRouter(RouterDeps{
		Auth:           middleware.NewAuthMiddleware(&key.PublicKey, redis, logger),
		Donor:          NewDonorHandler(dashboards, lifecycle, profiles, logger),
		Patient:        NewPatientHandler(dashboards, profiles, logger),
		Notifications:  NewNotificationHandler(services.NewInboxService(store), logger),
		Admin:          NewAdminHandler(services.NewAdminService(store), logger),
		Health:         NewHealthHandler(stubPinger{}, redis, s.breaker),
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})

	s.donorUser = store.AddUser("dev", "dev@example.com", domain.RoleDonor)
	s.patientUser = store.AddUser("priya", "priya@example.com", domain.RolePatient)
	s.adminUser = store.AddUser("root", "root@example.com", domain.RoleAdmin)
	s.donor = store.AddDonor(domain.Donor{
		UserID: s.donorUser.ID, BloodGroup: "O+", Age: 30, City: "Pune",
		ContactNumber: "9000000001", Availability: domain.Available,
	})
	s.patient = store.AddPatient(domain.Patient{
		UserID: s.patientUser.ID, BloodGroupNeeded: "O+", HospitalName: "Ruby Hall",
		City: "Pune", ContactNumber: "9000000002",
	})
	store.AddRequest(domain.BloodRequest{
		ID: 5, PatientID: s.patient.ID, BloodGroup: "O+", UnitsRequired: 2,
		Urgency: domain.UrgencyHigh, RequestedAt: time.Now().Add(-time.Hour),
	})
	return s
}

func (s *testServer) token(u domain.User) string {
	claims := jwt.MapClaims{
		"sub":  fmt.Sprint(u.ID),
		"role": string(u.Role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path string, u *domain.User, body any) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*u))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestDonorDashboardEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/donor/dashboard", &s.donorUser, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := decodeBody[ports.DonorDashboard](t, rec)
	require.Len(t, view.Matches, 1)
	assert.Equal(t, int64(5), view.Matches[0].Request.ID)
	assert.Equal(t, 1, view.Notified)
	assert.Contains(t, rec.Body.String(), `"matching_patients"`)

	rec = s.do(http.MethodGet, "/donor/dashboard", &s.donorUser, nil)
	assert.Equal(t, 0, decodeBody[ports.DonorDashboard](t, rec).Notified)
}

func TestApproveEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/donor/requests/5/approve", &s.donorUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	donation := decodeBody[domain.Donation](t, rec)
	assert.Equal(t, int64(5), donation.RequestID)
	assert.Equal(t, s.donor.ID, donation.DonorID)

	rec = s.do(http.MethodPost, "/donor/requests/5/approve", &s.donorUser, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Error, "Approved")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/donor/requests/99/approve", &s.donorUser, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/donor/requests/abc/approve", &s.donorUser, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/donor/requests/5/approve", &s.patientUser, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/donor/requests/5/approve", nil, nil).Code)
}

func TestStoreUnavailableIsGeneric(t *testing.T) {
	s := newTestServer(t)
	s.store.SetError("ListPendingRequestsByCityAndGroup", errors.New("pq: password authentication failed"))

	rec := s.do(http.MethodGet, "/donor/dashboard", &s.donorUser, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	msg := decodeBody[errorResponse](t, rec).Error
	assert.NotContains(t, msg, "pq:")
	assert.Contains(t, msg, "retry")
}

func TestPatientEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/patient/dashboard", &s.patientUser, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeBody[ports.PatientDashboard](t, rec)
	assert.Len(t, view.Matches, 1)
	assert.Equal(t, 1, view.Notified)

	rec = s.do(http.MethodPost, "/patient/requests", &s.patientUser, ports.BloodRequestInput{
		BloodGroup: "O+", UnitsRequired: 1, Urgency: domain.UrgencyCritical,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.RequestPending, decodeBody[domain.BloodRequest](t, rec).Status)

	rec = s.do(http.MethodPost, "/patient/requests", &s.patientUser, ports.BloodRequestInput{
		BloodGroup: "O+", UnitsRequired: 0, Urgency: domain.UrgencyCritical,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/patient/profile", &s.patientUser, ports.PatientProfileInput{
		BloodGroupNeeded: "O+", HospitalName: "X", City: "Pune", ContactNumber: "1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProfileAndAvailabilityEndpoints(t *testing.T) {
	s := newTestServer(t)
	newDonor := s.store.AddUser("asha", "asha@example.com", domain.RoleDonor)

	rec := s.do(http.MethodPost, "/donor/profile", &newDonor, ports.DonorProfileInput{
		BloodGroup: "A+", Age: 24, City: "Pune", ContactNumber: "9000000004",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, "/donor/availability", &newDonor, AvailabilityRequest{Availability: domain.Unavailable})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPut, "/donor/availability", &newDonor, AvailabilityRequest{Availability: "Busy"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/donor/profile", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+s.token(newDonor))
	out := httptest.NewRecorder()
	s.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/donor/dashboard", &s.donorUser, nil).Code)

	rec := s.do(http.MethodGet, "/notifications", &s.patientUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inbox := decodeBody[[]domain.Notification](t, rec)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationUnread, inbox[0].Status)
	assert.NotContains(t, rec.Body.String(), "signature")

	path := fmt.Sprintf("/notifications/%d/read", inbox[0].ID)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, path, &s.donorUser, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, path, &s.patientUser, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, path, &s.patientUser, nil).Code)

	inbox = decodeBody[[]domain.Notification](t, s.do(http.MethodGet, "/notifications", &s.patientUser, nil))
	assert.Equal(t, domain.NotificationRead, inbox[0].Status)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/admin/stats", &s.adminUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Stats{TotalDonors: 1, TotalPatients: 1, TotalRequests: 1}, decodeBody[domain.Stats](t, rec))

	for _, path := range []string{"/admin/donors", "/admin/patients", "/admin/requests", "/admin/donations"} {
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, &s.adminUser, nil).Code, path)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, &s.donorUser, nil).Code, path)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "UP", decodeBody[HealthResponse](t, rec).Status, path)
	}

	s.breaker.state = gobreaker.StateOpen
	rec := s.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	db := decodeBody[HealthResponse](t, rec).Checks["database"]
	assert.Equal(t, "DOWN", db.Status)
	assert.Equal(t, "Database circuit breaker is open", db.Message)
	s.breaker.state = gobreaker.StateHalfOpen
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", nil, nil).Code)

	s.redis.PingError = errors.New("down")
	rec = s.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DOWN", decodeBody[HealthResponse](t, rec).Checks["redis"].Status)

	s.do(http.MethodPost, "/donor/requests/5/approve", &s.donorUser, nil)
	rec = s.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `blood_portal_approvals_total{outcome="approved"} 1`)
}
