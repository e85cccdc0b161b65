package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

var adminAuth = domain.AuthContext{UserID: 100, Role: domain.RoleAdmin}

func TestAdminStats(t *testing.T) {
	f := newPuneFixture()
	_, err := newLifecycle(f, nil).Approve(context.Background(), f.donorAuth(), 5)
	require.NoError(t, err)

	stats, err := NewAdminService(f.store).Stats(context.Background(), adminAuth)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalDonors: 1, TotalPatients: 1, TotalRequests: 1, TotalDonations: 1}, *stats)
}

func TestAdminStats_AnyCountFailureFails(t *testing.T) {
	f := newPuneFixture()
	f.store.SetError("CountRequests", errors.New("boom"))

	_, err := NewAdminService(f.store).Stats(context.Background(), adminAuth)
	assert.True(t, domain.IsKind(err, domain.KindStoreUnavailable))
}

func TestAdminListings(t *testing.T) {
	f := newPuneFixture()
	_, err := newLifecycle(f, nil).Approve(context.Background(), f.donorAuth(), 5)
	require.NoError(t, err)
	svc := NewAdminService(f.store)
	ctx := context.Background()

	donors, err := svc.Donors(ctx, adminAuth)
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.Equal(t, "dev", donors[0].Username)

	patients, err := svc.Patients(ctx, adminAuth)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "priya@example.com", patients[0].Email)

	requests, err := svc.Requests(ctx, adminAuth)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "Ruby Hall", requests[0].HospitalName)

	donations, err := svc.Donations(ctx, adminAuth)
	require.NoError(t, err)
	require.Len(t, donations, 1)
	assert.Equal(t, "dev", donations[0].DonorName)
	assert.Equal(t, "priya", donations[0].PatientName)
	assert.Equal(t, domain.UrgencyHigh, donations[0].Urgency)
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	f := newPuneFixture()
	svc := NewAdminService(f.store)

	_, err := svc.Stats(context.Background(), f.donorAuth())
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
	_, err = svc.Donations(context.Background(), f.patientAuth())
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
	assert.Equal(t, 0, f.store.CallCount("ListDonations"))
}
