package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

type ProfileService struct {
	profiles ports.ProfileRepository
	requests ports.RequestRepository
	now      func() time.Time
}

func NewProfileService(profiles ports.ProfileRepository, requests ports.RequestRepository) *ProfileService {
	return &ProfileService{profiles: profiles, requests: requests, now: time.Now}
}

var _ ports.ProfileService = (*ProfileService)(nil)

func (s *ProfileService) CompleteDonorProfile(ctx context.Context, auth domain.AuthContext, in ports.DonorProfileInput) (*domain.Donor, error) {
	if err := auth.Require(domain.RoleDonor); err != nil {
		return nil, err
	}

	in.City = strings.TrimSpace(in.City)
	switch {
	case !domain.ValidBloodGroup(in.BloodGroup):
		return nil, invalidInput("unknown blood group %q", in.BloodGroup)
	case in.Age < domain.MinDonorAge || in.Age > domain.MaxDonorAge:
		return nil, invalidInput("donor age must be between %d and %d", domain.MinDonorAge, domain.MaxDonorAge)
	case in.City == "":
		return nil, invalidInput("city is required")
	case strings.TrimSpace(in.ContactNumber) == "":
		return nil, invalidInput("contact number is required")
	}

	donor, err := s.profiles.CreateDonor(ctx, domain.Donor{
		UserID:        auth.UserID,
		BloodGroup:    in.BloodGroup,
		Age:           in.Age,
		Gender:        strings.TrimSpace(in.Gender),
		City:          in.City,
		State:         strings.TrimSpace(in.State),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		Availability:  domain.Available,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewError(domain.KindConflict, "donor profile already exists", err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "user account not found", err)
		}
		return nil, domain.StoreUnavailable("failed to save donor profile", err)
	}
	return donor, nil
}

func (s *ProfileService) CompletePatientProfile(ctx context.Context, auth domain.AuthContext, in ports.PatientProfileInput) (*domain.Patient, error) {
	if err := auth.Require(domain.RolePatient); err != nil {
		return nil, err
	}

	in.City = strings.TrimSpace(in.City)
	switch {
	case !domain.ValidBloodGroup(in.BloodGroupNeeded):
		return nil, invalidInput("unknown blood group %q", in.BloodGroupNeeded)
	case strings.TrimSpace(in.HospitalName) == "":
		return nil, invalidInput("hospital name is required")
	case in.City == "":
		return nil, invalidInput("city is required")
	case strings.TrimSpace(in.ContactNumber) == "":
		return nil, invalidInput("contact number is required")
	}

	patient, err := s.profiles.CreatePatient(ctx, domain.Patient{
		UserID:           auth.UserID,
		BloodGroupNeeded: in.BloodGroupNeeded,
		HospitalName:     strings.TrimSpace(in.HospitalName),
		City:             in.City,
		State:            strings.TrimSpace(in.State),
		ContactNumber:    strings.TrimSpace(in.ContactNumber),
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewError(domain.KindConflict, "patient profile already exists", err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "user account not found", err)
		}
		return nil, domain.StoreUnavailable("failed to save patient profile", err)
	}
	return patient, nil
}

func (s *ProfileService) SetAvailability(ctx context.Context, auth domain.AuthContext, availability domain.Availability) error {
	if err := auth.Require(domain.RoleDonor); err != nil {
		return err
	}
	if !availability.Valid() {
		return invalidInput("availability must be %s or %s", domain.Available, domain.Unavailable)
	}

	donor, err := s.profiles.GetDonorByUser(ctx, auth.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewError(domain.KindNotFound, "donor profile not found", err)
		}
		return domain.StoreUnavailable("failed to load donor profile", err)
	}

	if err := s.profiles.SetDonorAvailability(ctx, donor.ID, availability); err != nil {
		return domain.StoreUnavailable("failed to update availability", err)
	}
	return nil
}

func (s *ProfileService) CreateBloodRequest(ctx context.Context, auth domain.AuthContext, in ports.BloodRequestInput) (*domain.BloodRequest, error) {
	if err := auth.Require(domain.RolePatient); err != nil {
		return nil, err
	}

	switch {
	case !domain.ValidBloodGroup(in.BloodGroup):
		return nil, invalidInput("unknown blood group %q", in.BloodGroup)
	case in.UnitsRequired < 1:
		return nil, invalidInput("units required must be at least 1")
	case !in.Urgency.Valid():
		return nil, invalidInput("unknown urgency level %q", in.Urgency)
	}

	patient, err := s.profiles.GetPatientByUser(ctx, auth.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "complete your patient profile first", err)
		}
		return nil, domain.StoreUnavailable("failed to load patient profile", err)
	}

	req, err := s.requests.CreateRequest(ctx, domain.BloodRequest{
		PatientID:     patient.ID,
		BloodGroup:    in.BloodGroup,
		UnitsRequired: in.UnitsRequired,
		Urgency:       in.Urgency,
		Status:        domain.RequestPending,
		RequestedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, domain.StoreUnavailable("failed to create blood request", err)
	}
	return req, nil
}

func invalidInput(format string, args ...any) *domain.Error {
	return domain.NewError(domain.KindInvalidInput, fmt.Sprintf(format, args...), nil)
}
