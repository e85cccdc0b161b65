package ports

import (
	"context"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

// Store adapters return domain.ErrNotFound, domain.ErrConflict or
// domain.ErrStaleState (optionally wrapped). Any other error is a store fault.

type ProfileRepository interface {
	GetDonorByUser(ctx context.Context, userID int64) (*domain.Donor, error)
	GetPatientByUser(ctx context.Context, userID int64) (*domain.Patient, error)
	CreateDonor(ctx context.Context, donor domain.Donor) (*domain.Donor, error)
	CreatePatient(ctx context.Context, patient domain.Patient) (*domain.Patient, error)
	SetDonorAvailability(ctx context.Context, donorID int64, availability domain.Availability) error
}

type MatchRepository interface {
	ListPendingRequestsByCityAndGroup(ctx context.Context, city, bloodGroup string) ([]domain.PatientMatch, error)
	ListAvailableDonorsByCityAndGroup(ctx context.Context, city, bloodGroup string) ([]domain.DonorMatch, error)
}

type RequestRepository interface {
	GetRequest(ctx context.Context, requestID int64) (*domain.BloodRequest, error)
	CreateRequest(ctx context.Context, req domain.BloodRequest) (*domain.BloodRequest, error)
	ListRequestsByPatient(ctx context.Context, patientID int64) ([]domain.BloodRequest, error)
	ListDonationsByDonor(ctx context.Context, donorID int64) ([]domain.DonationSummary, error)
}

type NotificationRepository interface {
	FindNotification(ctx context.Context, userID int64, sig domain.Signature) (*domain.Notification, error)
	// CreateNotification returns domain.ErrConflict when a notification with
	// the same (user, signature) already exists.
	CreateNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID int64) error
}

// LifecycleTx is the store view available inside an approval transaction.
type LifecycleTx interface {
	GetRequestForUpdate(ctx context.Context, requestID int64) (*domain.BloodRequest, error)
	CreateDonation(ctx context.Context, d domain.Donation) (*domain.Donation, error)
	// SetRequestStatus moves a request from one status to another and returns
	// domain.ErrStaleState when the request is no longer in from.
	SetRequestStatus(ctx context.Context, requestID int64, from, to domain.RequestStatus) error
	EnqueueEvent(ctx context.Context, eventID, eventType string, payload []byte) error
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx LifecycleTx) error) error
}

type AdminRepository interface {
	CountDonors(ctx context.Context) (int64, error)
	CountPatients(ctx context.Context) (int64, error)
	CountRequests(ctx context.Context) (int64, error)
	CountDonations(ctx context.Context) (int64, error)
	ListDonors(ctx context.Context) ([]domain.DonorDetail, error)
	ListPatients(ctx context.Context) ([]domain.PatientDetail, error)
	ListRequests(ctx context.Context) ([]domain.RequestDetail, error)
	ListDonations(ctx context.Context) ([]domain.DonationDetail, error)
}

// RecordStore is the full storage surface used by the core.
type RecordStore interface {
	ProfileRepository
	MatchRepository
	RequestRepository
	NotificationRepository
	AdminRepository
	TxRunner
}
