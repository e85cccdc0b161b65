package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// DashboardService builds donor and patient dashboards. Viewing a dashboard
// runs the matcher and announces new matches to the counterparts.
type DashboardService struct {
	profiles ports.ProfileRepository
	requests ports.RequestRepository
	matcher  *Matcher
	notifier *Notifier
	metrics  ports.Metrics
	logger   *slog.Logger
}

func NewDashboardService(
	profiles ports.ProfileRepository,
	requests ports.RequestRepository,
	matcher *Matcher,
	notifier *Notifier,
	metrics ports.Metrics,
	logger *slog.Logger,
) *DashboardService {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		profiles: profiles,
		requests: requests,
		matcher:  matcher,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

var _ ports.DashboardService = (*DashboardService)(nil)

func (s *DashboardService) DonorDashboard(ctx context.Context, auth domain.AuthContext) (*ports.DonorDashboard, error) {
	if err := auth.Require(domain.RoleDonor); err != nil {
		return nil, err
	}

	donor, err := s.profiles.GetDonorByUser(ctx, auth.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "complete your donor profile first", err)
		}
		return nil, domain.StoreUnavailable("failed to load donor profile", err)
	}

	donations, err := s.requests.ListDonationsByDonor(ctx, donor.ID)
	if err != nil {
		return nil, domain.StoreUnavailable("failed to load donations", err)
	}

	matches, err := s.matcher.FindMatchingPatients(ctx, *donor)
	if err != nil {
		return nil, err
	}

	sig := domain.Signature{CounterpartRole: domain.RoleDonor, BloodGroup: donor.BloodGroup}
	message := func() string {
		return fmt.Sprintf("Donor %s available for %s in %s", donor.ContactNumber, donor.BloodGroup, donor.City)
	}

	notified := 0
	for _, m := range matches {
		if s.notify(ctx, m.Patient.UserID, sig, message, directionDonorToPatient) {
			notified++
		}
	}

	return &ports.DonorDashboard{
		Donor:     *donor,
		Donations: donations,
		Matches:   matches,
		Notified:  notified,
	}, nil
}

func (s *DashboardService) PatientDashboard(ctx context.Context, auth domain.AuthContext) (*ports.PatientDashboard, error) {
	if err := auth.Require(domain.RolePatient); err != nil {
		return nil, err
	}

	patient, err := s.profiles.GetPatientByUser(ctx, auth.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "complete your patient profile first", err)
		}
		return nil, domain.StoreUnavailable("failed to load patient profile", err)
	}

	requests, err := s.requests.ListRequestsByPatient(ctx, patient.ID)
	if err != nil {
		return nil, domain.StoreUnavailable("failed to load blood requests", err)
	}

	matches, err := s.matcher.FindMatchingDonors(ctx, *patient)
	if err != nil {
		return nil, err
	}

	notified := 0
	// Donors are only told about a patient who is still waiting on blood.
	if hasPending(requests) {
		sig := domain.Signature{CounterpartRole: domain.RolePatient, BloodGroup: patient.BloodGroupNeeded}
		message := func() string {
			return fmt.Sprintf("Patient %s needs %s at %s (%s)",
				patient.ContactNumber, patient.BloodGroupNeeded, patient.HospitalName, patient.City)
		}
		for _, m := range matches {
			if s.notify(ctx, m.Donor.UserID, sig, message, directionPatientToDonor) {
				notified++
			}
		}
	}

	return &ports.PatientDashboard{
		Patient:  *patient,
		Requests: requests,
		Matches:  matches,
		Notified: notified,
	}, nil
}

// notify never fails the dashboard; write errors are logged and counted.
func (s *DashboardService) notify(ctx context.Context, recipientID int64, sig domain.Signature, message func() string, direction string) bool {
	created, err := s.notifier.NotifyIfNew(ctx, recipientID, sig, message)
	if err != nil {
		s.metrics.IncNotificationFailed(direction)
		s.logger.ErrorContext(ctx, "failed to create match notification",
			"recipient_id", recipientID,
			"signature", sig.String(),
			"error", err,
		)
		return false
	}
	if created {
		s.metrics.IncNotificationCreated(direction)
	}
	return created
}

func hasPending(requests []domain.BloodRequest) bool {
	for _, r := range requests {
		if r.Status == domain.RequestPending {
			return true
		}
	}
	return false
}
