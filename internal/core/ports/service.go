package ports

import (
	"context"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

type DonorDashboard struct {
	Donor     domain.Donor             `json:"donor"`
	Donations []domain.DonationSummary `json:"donations"`
	Matches   []domain.PatientMatch    `json:"matching_patients"`
	Notified  int                      `json:"notified"`
}

type PatientDashboard struct {
	Patient  domain.Patient        `json:"patient"`
	Requests []domain.BloodRequest `json:"requests"`
	Matches  []domain.DonorMatch   `json:"matching_donors"`
	Notified int                   `json:"notified"`
}

type DashboardService interface {
	DonorDashboard(ctx context.Context, auth domain.AuthContext) (*DonorDashboard, error)
	PatientDashboard(ctx context.Context, auth domain.AuthContext) (*PatientDashboard, error)
}

type LifecycleService interface {
	Approve(ctx context.Context, auth domain.AuthContext, requestID int64) (*domain.Donation, error)
}

type DonorProfileInput struct {
	BloodGroup    string `json:"blood_group"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	City          string `json:"city"`
	State         string `json:"state"`
	ContactNumber string `json:"contact_number"`
}

type PatientProfileInput struct {
	BloodGroupNeeded string `json:"blood_group_needed"`
	HospitalName     string `json:"hospital_name"`
	City             string `json:"city"`
	State            string `json:"state"`
	ContactNumber    string `json:"contact_number"`
}

type BloodRequestInput struct {
	BloodGroup    string         `json:"blood_group"`
	UnitsRequired int            `json:"units_required"`
	Urgency       domain.Urgency `json:"urgency_level"`
}

type ProfileService interface {
	CompleteDonorProfile(ctx context.Context, auth domain.AuthContext, in DonorProfileInput) (*domain.Donor, error)
	CompletePatientProfile(ctx context.Context, auth domain.AuthContext, in PatientProfileInput) (*domain.Patient, error)
	SetAvailability(ctx context.Context, auth domain.AuthContext, availability domain.Availability) error
	CreateBloodRequest(ctx context.Context, auth domain.AuthContext, in BloodRequestInput) (*domain.BloodRequest, error)
}

type InboxService interface {
	List(ctx context.Context, auth domain.AuthContext) ([]domain.Notification, error)
	MarkRead(ctx context.Context, auth domain.AuthContext, notificationID int64) error
}

type AdminService interface {
	Stats(ctx context.Context, auth domain.AuthContext) (*domain.Stats, error)
	Donors(ctx context.Context, auth domain.AuthContext) ([]domain.DonorDetail, error)
	Patients(ctx context.Context, auth domain.AuthContext) ([]domain.PatientDetail, error)
	Requests(ctx context.Context, auth domain.AuthContext) ([]domain.RequestDetail, error)
	Donations(ctx context.Context, auth domain.AuthContext) ([]domain.DonationDetail, error)
}
