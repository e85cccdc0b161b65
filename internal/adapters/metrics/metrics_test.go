package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncNotificationCreated("donor_to_patient")
	m.IncNotificationCreated("donor_to_patient")
	m.IncNotificationFailed("patient_to_donor")
	m.IncApproval("approved")
	m.IncApproval("invalid_state")
	m.ObserveMatches("donor_to_patient", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationsCreated.WithLabelValues("donor_to_patient")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NotificationsCreated.WithLabelValues("patient_to_donor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed.WithLabelValues("patient_to_donor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Approvals.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Approvals.WithLabelValues("invalid_state")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.MatchCount))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveMatches("donor_to_patient", 1)
		m.IncNotificationCreated("donor_to_patient")
		m.IncNotificationFailed("donor_to_patient")
		m.IncApproval("approved")
	})
}
