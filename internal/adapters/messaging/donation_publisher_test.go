package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishDonationApproved(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(nil, ch, "donations")
	evt := domain.DonationApprovedEvent{
		EventID:    "e-1",
		DonationID: 9,
		RequestID:  5,
		ApprovedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, broker.PublishDonationApproved(context.Background(), evt))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, []string{"/donations"}, ch.keys)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "e-1", msg.MessageId)
	assert.Equal(t, domain.EventDonationApproved, msg.Type)

	var got domain.DonationApprovedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, evt, got)
}

func TestPublishDonationApproved_ExpiredContext(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(nil, ch, "donations")

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := broker.PublishDonationApproved(ctx, domain.DonationApprovedEvent{EventID: "e-1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, ch.published)
}

func TestPublishDonationApproved_BreakerOpens(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}
	broker := newBroker(nil, ch, "donations")

	for i := 0; i < 3; i++ {
		assert.Error(t, broker.PublishDonationApproved(context.Background(), domain.DonationApprovedEvent{}))
	}
	assert.Equal(t, gobreaker.StateOpen, broker.cb.State())
	assert.False(t, broker.IsOpen())

	err := broker.PublishDonationApproved(context.Background(), domain.DonationApprovedEvent{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	require.NoError(t, newBroker(nil, ch, "donations").Close())
	assert.True(t, ch.closed)
}
