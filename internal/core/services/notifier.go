package services

import (
	"context"
	"errors"
	"time"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// Notifier creates match notifications at most once per (recipient, signature).
type Notifier struct {
	repo ports.NotificationRepository
	now  func() time.Time
}

func NewNotifier(repo ports.NotificationRepository) *Notifier {
	return &Notifier{repo: repo, now: time.Now}
}

// NotifyIfNew creates an unread notification for recipientID unless one with
// the same signature already exists. It reports whether a row was created.
// buildMessage is only invoked when a notification is about to be written.
func (n *Notifier) NotifyIfNew(ctx context.Context, recipientID int64, sig domain.Signature, buildMessage func() string) (bool, error) {
	existing, err := n.repo.FindNotification(ctx, recipientID, sig)
	switch {
	case err == nil && existing != nil:
		return false, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return false, domain.StoreUnavailable("failed to look up notification", err)
	}

	_, err = n.repo.CreateNotification(ctx, domain.Notification{
		UserID:    recipientID,
		Message:   buildMessage(),
		Status:    domain.NotificationUnread,
		Signature: sig,
		CreatedAt: n.now(),
	})
	if err != nil {
		// Lost a race with a concurrent dashboard view; the row exists.
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		return false, domain.StoreUnavailable("failed to create notification", err)
	}
	return true, nil
}
