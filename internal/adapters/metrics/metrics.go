package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// Metrics implements ports.Metrics with Prometheus collectors.
type Metrics struct {
	// Matches returned per dashboard view by direction
	MatchCount *prometheus.HistogramVec

	// Notifications written and failed by direction
	NotificationsCreated *prometheus.CounterVec
	NotificationsFailed  *prometheus.CounterVec

	// Approval attempts by outcome ("approved" or an error kind)
	Approvals *prometheus.CounterVec
}

var _ ports.Metrics = (*Metrics)(nil)

// New registers the portal collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MatchCount: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blood_portal_matches",
			Help:    "Number of matches found per dashboard view",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}, []string{"direction"}), // direction: "donor_to_patient", "patient_to_donor"

		NotificationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blood_portal_notifications_created_total",
			Help: "Match notifications created",
		}, []string{"direction"}),

		NotificationsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blood_portal_notifications_failed_total",
			Help: "Match notifications that could not be written",
		}, []string{"direction"}),

		Approvals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blood_portal_approvals_total",
			Help: "Blood request approval attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveMatches(direction string, n int) {
	if m != nil {
		m.MatchCount.WithLabelValues(direction).Observe(float64(n))
	}
}

func (m *Metrics) IncNotificationCreated(direction string) {
	if m != nil {
		m.NotificationsCreated.WithLabelValues(direction).Inc()
	}
}

func (m *Metrics) IncNotificationFailed(direction string) {
	if m != nil {
		m.NotificationsFailed.WithLabelValues(direction).Inc()
	}
}

func (m *Metrics) IncApproval(outcome string) {
	if m != nil {
		m.Approvals.WithLabelValues(outcome).Inc()
	}
}
