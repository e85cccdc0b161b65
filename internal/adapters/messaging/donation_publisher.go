package messaging

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

var _ ports.DonationEventPublisher = (*RabbitMQBroker)(nil)

func (rmq *RabbitMQBroker) PublishDonationApproved(ctx context.Context, evt domain.DonationApprovedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.EventID,
				Type:         domain.EventDonationApproved,
				Timestamp:    evt.ApprovedAt,
				Body:         body,
			},
		)
		return nil, err
	})
	return err
}
