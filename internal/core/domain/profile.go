package domain

type Availability string

const (
	Available   Availability = "Available"
	Unavailable Availability = "Unavailable"
)

func (a Availability) Valid() bool {
	return a == Available || a == Unavailable
}

var bloodGroups = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// ValidBloodGroup reports whether g is one of the eight ABO/Rh groups.
func ValidBloodGroup(g string) bool {
	return bloodGroups[g]
}

const (
	MinDonorAge = 18
	MaxDonorAge = 65
)

type Donor struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	BloodGroup    string       `json:"blood_group"`
	Age           int          `json:"age"`
	Gender        string       `json:"gender"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	ContactNumber string       `json:"contact_number"`
	Availability  Availability `json:"availability_status"`
}

type Patient struct {
	ID               int64  `json:"id"`
	UserID           int64  `json:"user_id"`
	BloodGroupNeeded string `json:"blood_group_needed"`
	HospitalName     string `json:"hospital_name"`
	City             string `json:"city"`
	State            string `json:"state"`
	ContactNumber    string `json:"contact_number"`
}
