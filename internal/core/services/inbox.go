package services

import (
	"context"
	"errors"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// InboxService exposes a user's own notifications.
type InboxService struct {
	repo ports.NotificationRepository
}

func NewInboxService(repo ports.NotificationRepository) *InboxService {
	return &InboxService{repo: repo}
}

var _ ports.InboxService = (*InboxService)(nil)

func (s *InboxService) List(ctx context.Context, auth domain.AuthContext) ([]domain.Notification, error) {
	if err := auth.Require(domain.RoleDonor, domain.RolePatient, domain.RoleAdmin); err != nil {
		return nil, err
	}
	notifications, err := s.repo.ListNotificationsByUser(ctx, auth.UserID)
	if err != nil {
		return nil, domain.StoreUnavailable("failed to load notifications", err)
	}
	return notifications, nil
}

// MarkRead flips a notification to Read. Notifications owned by someone else
// are reported as not found.
func (s *InboxService) MarkRead(ctx context.Context, auth domain.AuthContext, notificationID int64) error {
	if err := auth.Require(domain.RoleDonor, domain.RolePatient, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.MarkNotificationRead(ctx, notificationID, auth.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewError(domain.KindNotFound, "notification not found", err)
		}
		return domain.StoreUnavailable("failed to update notification", err)
	}
	return nil
}
