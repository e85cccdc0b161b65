package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

func scanNotification(row rowScanner) (domain.Notification, error) {
	var (
		n   domain.Notification
		sig string
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Status, &sig, &n.CreatedAt); err != nil {
		return n, err
	}
	parsed, err := domain.ParseSignature(sig)
	if err != nil {
		return n, fmt.Errorf("notification %d: %w", n.ID, err)
	}
	n.Signature = parsed
	return n, nil
}

func (r *SQLRepository) FindNotification(ctx context.Context, userID int64, sig domain.Signature) (*domain.Notification, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.Notification, error) {
		row := r.db.QueryRowContext(ctx, `
			SELECT id, user_id, message, status, signature, created_at
			FROM notifications
			WHERE user_id = $1 AND signature = $2`, userID, sig.String())
		n, err := scanNotification(row)
		if err != nil {
			return nil, translate(err)
		}
		return &n, nil
	})
}

// CreateNotification relies on the (user_id, signature) unique key so that
// concurrent dashboard views insert at most one row.
func (r *SQLRepository) CreateNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.Notification, error) {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO notifications (user_id, message, status, signature, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, signature) DO NOTHING
			RETURNING id`,
			n.UserID, n.Message, n.Status, n.Signature.String(), n.CreatedAt,
		).Scan(&n.ID)
		if err != nil {
			// No row back means the key already existed.
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrConflict
			}
			return nil, translate(err)
		}
		return &n, nil
	})
}

func (r *SQLRepository) ListNotificationsByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.Notification, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, user_id, message, status, signature, created_at
			FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC`, userID)
		if err != nil {
			return nil, err
		}
		return collect(rows, scanNotification)
	})
}

func (r *SQLRepository) MarkNotificationRead(ctx context.Context, notificationID, userID int64) error {
	return r.exec(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE notifications SET status = 'Read' WHERE id = $1 AND user_id = $2`,
			notificationID, userID)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res)
	})
}
