package mocks

import (
	"sync"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// RecordingMetrics counts observations by name and label.
type RecordingMetrics struct {
	mu       sync.Mutex
	Matches  map[string][]int
	Created  map[string]int
	Failed   map[string]int
	Outcomes map[string]int
}

var _ ports.Metrics = (*RecordingMetrics)(nil)

func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Matches:  make(map[string][]int),
		Created:  make(map[string]int),
		Failed:   make(map[string]int),
		Outcomes: make(map[string]int),
	}
}

func (m *RecordingMetrics) ObserveMatches(direction string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Matches[direction] = append(m.Matches[direction], n)
}

func (m *RecordingMetrics) IncNotificationCreated(direction string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created[direction]++
}

func (m *RecordingMetrics) IncNotificationFailed(direction string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed[direction]++
}

func (m *RecordingMetrics) IncApproval(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[outcome]++
}
