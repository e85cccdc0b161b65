package ports

import (
	"context"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

type DonationEventPublisher interface {
	PublishDonationApproved(ctx context.Context, evt domain.DonationApprovedEvent) error
}
