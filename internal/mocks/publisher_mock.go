package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// MockDonationPublisher records published donation events.
type MockDonationPublisher struct {
	mu sync.RWMutex

	PublishedEvents []domain.DonationApprovedEvent

	// Error injection
	PublishError error

	PublishCallCount int
}

var _ ports.DonationEventPublisher = (*MockDonationPublisher)(nil)

func NewMockDonationPublisher() *MockDonationPublisher {
	return &MockDonationPublisher{
		PublishedEvents: make([]domain.DonationApprovedEvent, 0),
	}
}

func (m *MockDonationPublisher) PublishDonationApproved(ctx context.Context, evt domain.DonationApprovedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the published events.
func (m *MockDonationPublisher) GetPublishedEvents() []domain.DonationApprovedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]domain.DonationApprovedEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

func (m *MockDonationPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}

func (m *MockDonationPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = make([]domain.DonationApprovedEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}
