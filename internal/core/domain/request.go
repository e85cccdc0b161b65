package domain

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
)

type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

// Rank orders urgency levels; unknown values rank below Low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyCritical:
		return 4
	}
	return 0
}

func (u Urgency) Valid() bool { return u.Rank() > 0 }

type BloodRequest struct {
	ID            int64         `json:"id"`
	PatientID     int64         `json:"patient_id"`
	BloodGroup    string        `json:"blood_group"`
	UnitsRequired int           `json:"units_required"`
	Urgency       Urgency       `json:"urgency_level"`
	Status        RequestStatus `json:"status"`
	RequestedAt   time.Time     `json:"request_date"`
}

// CanApprove reports whether the request may move to Approved.
func (r BloodRequest) CanApprove() bool {
	return r.Status == RequestPending
}
