package services

import (
	"io"
	"log/slog"
	"time"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/mocks"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// puneFixture seeds a donor and a patient who match on O+ in Pune.
type puneFixture struct {
	store       *mocks.MemoryStore
	donorUser   domain.User
	patientUser domain.User
	donor       domain.Donor
	patient     domain.Patient
	request     domain.BloodRequest
}

func newPuneFixture() *puneFixture {
	store := mocks.NewMemoryStore()
	f := &puneFixture{store: store}

	f.donorUser = store.AddUser("dev", "dev@example.com", domain.RoleDonor)
	f.patientUser = store.AddUser("priya", "priya@example.com", domain.RolePatient)

	f.donor = store.AddDonor(domain.Donor{
		UserID:        f.donorUser.ID,
		BloodGroup:    "O+",
		Age:           30,
		Gender:        "M",
		City:          "Pune",
		State:         "MH",
		ContactNumber: "9000000001",
		Availability:  domain.Available,
	})
	f.patient = store.AddPatient(domain.Patient{
		UserID:           f.patientUser.ID,
		BloodGroupNeeded: "O+",
		HospitalName:     "Ruby Hall",
		City:             "Pune",
		State:            "MH",
		ContactNumber:    "9000000002",
	})
	f.request = store.AddRequest(domain.BloodRequest{
		ID:            5,
		PatientID:     f.patient.ID,
		BloodGroup:    "O+",
		UnitsRequired: 2,
		Urgency:       domain.UrgencyHigh,
		Status:        domain.RequestPending,
		RequestedAt:   baseTime,
	})
	return f
}

func (f *puneFixture) donorAuth() domain.AuthContext {
	return domain.AuthContext{UserID: f.donorUser.ID, Role: domain.RoleDonor}
}

func (f *puneFixture) patientAuth() domain.AuthContext {
	return domain.AuthContext{UserID: f.patientUser.ID, Role: domain.RolePatient}
}
