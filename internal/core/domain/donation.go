package domain

import "time"

type DonationStatus string

const DonationApproved DonationStatus = "Approved"

type Donation struct {
	ID        int64          `json:"id"`
	DonorID   int64          `json:"donor_id"`
	PatientID int64          `json:"patient_id"`
	RequestID int64          `json:"request_id"`
	Status    DonationStatus `json:"status"`
	DonatedAt time.Time      `json:"donation_date"`
}

// DonationSummary is a donation joined with the request it fulfilled, as
// shown on a donor's dashboard.
type DonationSummary struct {
	Donation
	BloodGroup    string `json:"blood_group"`
	UnitsRequired int    `json:"units_required"`
}

// DonationDetail is a donation with both parties resolved, for admin listings.
type DonationDetail struct {
	Donation
	DonorName     string  `json:"donor_name"`
	DonorEmail    string  `json:"donor_email"`
	PatientName   string  `json:"patient_name"`
	PatientEmail  string  `json:"patient_email"`
	BloodGroup    string  `json:"blood_group"`
	UnitsRequired int     `json:"units_required"`
	Urgency       Urgency `json:"urgency_level"`
	HospitalName  string  `json:"hospital_name"`
}

const EventDonationApproved = "donation.approved"

// DonationApprovedEvent is written to the outbox when a request is approved.
type DonationApprovedEvent struct {
	EventID    string    `json:"event_id"`
	DonationID int64     `json:"donation_id"`
	RequestID  int64     `json:"request_id"`
	DonorID    int64     `json:"donor_id"`
	PatientID  int64     `json:"patient_id"`
	ApprovedAt time.Time `json:"approved_at"`
}
