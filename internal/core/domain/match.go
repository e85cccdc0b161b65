package domain

// PatientMatch is a patient holding a pending request a donor can serve.
type PatientMatch struct {
	Patient  Patient      `json:"patient"`
	Request  BloodRequest `json:"request"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
}

// DonorMatch is an available donor compatible with a patient.
type DonorMatch struct {
	Donor    Donor  `json:"donor"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PatientDetail and DonorDetail carry the owning user's identity for admin
// listings.
type PatientDetail struct {
	Patient
	Username string `json:"username"`
	Email    string `json:"email"`
}

type DonorDetail struct {
	Donor
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RequestDetail is a blood request with its patient for admin listings.
type RequestDetail struct {
	BloodRequest
	HospitalName  string `json:"hospital_name"`
	City          string `json:"city"`
	ContactNumber string `json:"contact_number"`
	Username      string `json:"username"`
	Email         string `json:"email"`
}

type Stats struct {
	TotalDonors    int64 `json:"total_donors"`
	TotalPatients  int64 `json:"total_patients"`
	TotalRequests  int64 `json:"total_requests"`
	TotalDonations int64 `json:"total_donations"`
}
