package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/mocks"
)

var donorSig = domain.Signature{CounterpartRole: domain.RoleDonor, BloodGroup: "O+"}

func TestNotifyIfNew_CreatesOnce(t *testing.T) {
	store := mocks.NewMemoryStore()
	n := NewNotifier(store)
	ctx := context.Background()

	built := 0
	msg := func() string { built++; return "Donor 9000000001 available for O+ in Pune" }

	created, err := n.NotifyIfNew(ctx, 7, donorSig, msg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = n.NotifyIfNew(ctx, 7, donorSig, msg)
	require.NoError(t, err)
	assert.False(t, created)

	got := store.NotificationsFor(7)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationUnread, got[0].Status)
	assert.Equal(t, donorSig, got[0].Signature)
	assert.Equal(t, 1, built, "message is only built for a new notification")
}

func TestNotifyIfNew_SignatureScopes(t *testing.T) {
	store := mocks.NewMemoryStore()
	n := NewNotifier(store)
	ctx := context.Background()
	msg := func() string { return "m" }

	cases := []struct {
		recipient int64
		sig       domain.Signature
	}{
		{7, donorSig},
		{7, domain.Signature{CounterpartRole: domain.RoleDonor, BloodGroup: "A+"}},
		{7, domain.Signature{CounterpartRole: domain.RolePatient, BloodGroup: "O+"}},
		{8, donorSig},
	}
	for _, tc := range cases {
		created, err := n.NotifyIfNew(ctx, tc.recipient, tc.sig, msg)
		require.NoError(t, err)
		assert.True(t, created, "recipient %d signature %s", tc.recipient, tc.sig)
	}
	assert.Len(t, store.NotificationsFor(7), 3)
	assert.Len(t, store.NotificationsFor(8), 1)
}

func TestNotifyIfNew_ReadNotificationStillCounts(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.AddNotification(domain.Notification{UserID: 7, Message: "old", Status: domain.NotificationRead, Signature: donorSig})

	created, err := NewNotifier(store).NotifyIfNew(context.Background(), 7, donorSig, func() string { return "new" })
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, store.NotificationsFor(7), 1)
}

func TestNotifyIfNew_LookupFailure(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.SetError("FindNotification", errors.New("timeout"))

	created, err := NewNotifier(store).NotifyIfNew(context.Background(), 7, donorSig, func() string { return "m" })
	assert.False(t, created)
	assert.True(t, domain.IsKind(err, domain.KindStoreUnavailable))
	assert.Equal(t, 0, store.CallCount("CreateNotification"))
}

func TestNotifyIfNew_WriteFailure(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.SetError("CreateNotification", errors.New("disk full"))

	created, err := NewNotifier(store).NotifyIfNew(context.Background(), 7, donorSig, func() string { return "m" })
	assert.False(t, created)
	assert.True(t, domain.IsKind(err, domain.KindStoreUnavailable))
}

func TestNotifyIfNew_LostRaceIsNotAnError(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.SetError("CreateNotification", domain.ErrConflict)

	created, err := NewNotifier(store).NotifyIfNew(context.Background(), 7, donorSig, func() string { return "m" })
	require.NoError(t, err)
	assert.False(t, created)
}

func TestNotifyIfNew_Concurrent(t *testing.T) {
	store := mocks.NewMemoryStore()
	n := NewNotifier(store)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := n.NotifyIfNew(context.Background(), 7, donorSig, func() string { return "m" })
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, store.NotificationsFor(7), 1)
}
