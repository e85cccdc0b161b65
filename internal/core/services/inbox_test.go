package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/mocks"
)

func TestInbox_ListNewestFirst(t *testing.T) {
	store := mocks.NewMemoryStore()
	older := store.AddNotification(domain.Notification{UserID: 7, Message: "a", Status: domain.NotificationUnread, CreatedAt: baseTime})
	newer := store.AddNotification(domain.Notification{UserID: 7, Message: "b", Status: domain.NotificationUnread, CreatedAt: baseTime.Add(time.Minute)})
	store.AddNotification(domain.Notification{UserID: 8, Message: "c", CreatedAt: baseTime})

	got, err := NewInboxService(store).List(context.Background(), domain.AuthContext{UserID: 7, Role: domain.RolePatient})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}

func TestInbox_MarkRead(t *testing.T) {
	store := mocks.NewMemoryStore()
	n := store.AddNotification(domain.Notification{UserID: 7, Message: "a", Status: domain.NotificationUnread, CreatedAt: baseTime})
	svc := NewInboxService(store)
	owner := domain.AuthContext{UserID: 7, Role: domain.RoleDonor}

	require.NoError(t, svc.MarkRead(context.Background(), owner, n.ID))
	assert.Equal(t, domain.NotificationRead, store.NotificationsFor(7)[0].Status)

	// Idempotent.
	require.NoError(t, svc.MarkRead(context.Background(), owner, n.ID))

	err := svc.MarkRead(context.Background(), domain.AuthContext{UserID: 8, Role: domain.RoleDonor}, n.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound), "foreign notifications look missing")

	err = svc.MarkRead(context.Background(), owner, 9999)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestInbox_Errors(t *testing.T) {
	store := mocks.NewMemoryStore()
	svc := NewInboxService(store)

	_, err := svc.List(context.Background(), domain.AuthContext{})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	store.SetError("ListNotificationsByUser", errors.New("boom"))
	_, err = svc.List(context.Background(), domain.AuthContext{UserID: 1, Role: domain.RoleAdmin})
	assert.True(t, domain.IsKind(err, domain.KindStoreUnavailable))
}
