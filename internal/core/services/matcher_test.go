package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
	"github.com/AchilleasB/blood-portal/matching-service/internal/mocks"
)

// stubMatchRepo returns fixed slices so ordering is under test control.
type stubMatchRepo struct {
	patients []domain.PatientMatch
	donors   []domain.DonorMatch
	err      error
}

func (s stubMatchRepo) ListPendingRequestsByCityAndGroup(context.Context, string, string) ([]domain.PatientMatch, error) {
	return s.patients, s.err
}

func (s stubMatchRepo) ListAvailableDonorsByCityAndGroup(context.Context, string, string) ([]domain.DonorMatch, error) {
	return s.donors, s.err
}

var _ ports.MatchRepository = stubMatchRepo{}

func patientMatch(id int64, urgency domain.Urgency, at time.Time) domain.PatientMatch {
	return domain.PatientMatch{Request: domain.BloodRequest{ID: id, Urgency: urgency, RequestedAt: at, Status: domain.RequestPending}}
}

func requestIDs(ms []domain.PatientMatch) []int64 {
	ids := make([]int64, len(ms))
	for i, m := range ms {
		ids[i] = m.Request.ID
	}
	return ids
}

func TestFindMatchingPatients_Ordering(t *testing.T) {
	repo := stubMatchRepo{patients: []domain.PatientMatch{
		patientMatch(1, domain.UrgencyLow, baseTime.Add(3*time.Hour)),
		patientMatch(2, domain.UrgencyCritical, baseTime),
		patientMatch(3, domain.UrgencyHigh, baseTime.Add(time.Hour)),
		patientMatch(4, domain.UrgencyCritical, baseTime.Add(2*time.Hour)),
		patientMatch(5, domain.Urgency("Unknown"), baseTime.Add(4*time.Hour)),
		patientMatch(6, domain.UrgencyHigh, baseTime.Add(time.Hour)),
	}}
	m := NewMatcher(repo, nil)

	got, err := m.FindMatchingPatients(context.Background(), domain.Donor{City: "Pune", BloodGroup: "O+"})
	require.NoError(t, err)

	// Critical newest first, then High with equal timestamps by id desc,
	// then Low, then unrecognised urgency last.
	assert.Equal(t, []int64{4, 2, 6, 3, 1, 5}, requestIDs(got))
}

func TestFindMatchingPatients_Deterministic(t *testing.T) {
	build := func() []domain.PatientMatch {
		return []domain.PatientMatch{
			patientMatch(10, domain.UrgencyMedium, baseTime),
			patientMatch(11, domain.UrgencyMedium, baseTime),
			patientMatch(12, domain.UrgencyMedium, baseTime),
		}
	}
	reversed := build()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	a, err := NewMatcher(stubMatchRepo{patients: build()}, nil).FindMatchingPatients(context.Background(), domain.Donor{})
	require.NoError(t, err)
	b, err := NewMatcher(stubMatchRepo{patients: reversed}, nil).FindMatchingPatients(context.Background(), domain.Donor{})
	require.NoError(t, err)

	assert.Equal(t, requestIDs(a), requestIDs(b))
	assert.Equal(t, []int64{12, 11, 10}, requestIDs(a))
}

func TestFindMatchingDonors_YoungestFirst(t *testing.T) {
	repo := stubMatchRepo{donors: []domain.DonorMatch{
		{Donor: domain.Donor{ID: 1, Age: 40}},
		{Donor: domain.Donor{ID: 2, Age: 22}},
		{Donor: domain.Donor{ID: 3, Age: 40}},
		{Donor: domain.Donor{ID: 4, Age: 19}},
	}}
	metrics := mocks.NewRecordingMetrics()

	got, err := NewMatcher(repo, metrics).FindMatchingDonors(context.Background(), domain.Patient{City: "Pune", BloodGroupNeeded: "A+"})
	require.NoError(t, err)

	ids := make([]int64, len(got))
	for i, m := range got {
		ids[i] = m.Donor.ID
	}
	assert.Equal(t, []int64{4, 2, 1, 3}, ids)
	assert.Equal(t, []int{4}, metrics.Matches[directionPatientToDonor])
}

func TestMatcher_StoreFailure(t *testing.T) {
	m := NewMatcher(stubMatchRepo{err: errors.New("connection refused")}, nil)

	_, err := m.FindMatchingPatients(context.Background(), domain.Donor{})
	assert.True(t, domain.IsKind(err, domain.KindStoreUnavailable))

	_, err = m.FindMatchingDonors(context.Background(), domain.Patient{})
	assert.True(t, domain.IsKind(err, domain.KindStoreUnavailable))
}

func TestMatcher_CityAndGroupFilter(t *testing.T) {
	f := newPuneFixture()
	otherCity := f.store.AddPatient(domain.Patient{UserID: 99, BloodGroupNeeded: "O+", City: "Mumbai"})
	f.store.AddRequest(domain.BloodRequest{PatientID: otherCity.ID, BloodGroup: "O+", Urgency: domain.UrgencyCritical, RequestedAt: baseTime})
	f.store.AddRequest(domain.BloodRequest{PatientID: f.patient.ID, BloodGroup: "A+", Urgency: domain.UrgencyCritical, RequestedAt: baseTime})
	f.store.AddRequest(domain.BloodRequest{PatientID: f.patient.ID, BloodGroup: "O+", Status: domain.RequestApproved, RequestedAt: baseTime})

	got, err := NewMatcher(f.store, nil).FindMatchingPatients(context.Background(), f.donor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f.request.ID, got[0].Request.ID)
	assert.Equal(t, "priya", got[0].Username)
}

func TestMatcher_UnavailableDonorExcluded(t *testing.T) {
	f := newPuneFixture()
	f.store.AddDonor(domain.Donor{UserID: 50, BloodGroup: "O+", Age: 20, City: "Pune", Availability: domain.Unavailable})

	got, err := NewMatcher(f.store, nil).FindMatchingDonors(context.Background(), f.patient)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f.donor.ID, got[0].Donor.ID)
}

func TestMatcher_NoMatchesIsEmpty(t *testing.T) {
	f := newPuneFixture()
	got, err := NewMatcher(f.store, nil).FindMatchingPatients(context.Background(), domain.Donor{City: "Nagpur", BloodGroup: "AB-"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
