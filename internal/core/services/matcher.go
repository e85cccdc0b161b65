package services

import (
	"cmp"
	"context"
	"slices"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

const (
	directionDonorToPatient = "donor_to_patient"
	directionPatientToDonor = "patient_to_donor"
)

// Matcher pairs donors and patients by city and exact blood group. It only
// reads from the store; results are recomputed on every call.
type Matcher struct {
	repo    ports.MatchRepository
	metrics ports.Metrics
}

func NewMatcher(repo ports.MatchRepository, metrics ports.Metrics) *Matcher {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &Matcher{repo: repo, metrics: metrics}
}

// FindMatchingPatients returns one entry per pending request in the donor's
// city for the donor's blood group, most urgent then most recent first.
func (m *Matcher) FindMatchingPatients(ctx context.Context, donor domain.Donor) ([]domain.PatientMatch, error) {
	matches, err := m.repo.ListPendingRequestsByCityAndGroup(ctx, donor.City, donor.BloodGroup)
	if err != nil {
		return nil, domain.StoreUnavailable("failed to load matching patients", err)
	}

	slices.SortStableFunc(matches, func(a, b domain.PatientMatch) int {
		if c := cmp.Compare(b.Request.Urgency.Rank(), a.Request.Urgency.Rank()); c != 0 {
			return c
		}
		if c := b.Request.RequestedAt.Compare(a.Request.RequestedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Request.ID, a.Request.ID)
	})

	m.metrics.ObserveMatches(directionDonorToPatient, len(matches))
	return matches, nil
}

// FindMatchingDonors returns available donors in the patient's city with the
// needed blood group, youngest first.
func (m *Matcher) FindMatchingDonors(ctx context.Context, patient domain.Patient) ([]domain.DonorMatch, error) {
	matches, err := m.repo.ListAvailableDonorsByCityAndGroup(ctx, patient.City, patient.BloodGroupNeeded)
	if err != nil {
		return nil, domain.StoreUnavailable("failed to load matching donors", err)
	}

	slices.SortStableFunc(matches, func(a, b domain.DonorMatch) int {
		if c := cmp.Compare(a.Donor.Age, b.Donor.Age); c != 0 {
			return c
		}
		return cmp.Compare(a.Donor.ID, b.Donor.ID)
	})

	m.metrics.ObserveMatches(directionPatientToDonor, len(matches))
	return matches, nil
}
