package ports

// Metrics receives core observations. Direction is "donor_to_patient" or
// "patient_to_donor".
type Metrics interface {
	ObserveMatches(direction string, n int)
	IncNotificationCreated(direction string)
	IncNotificationFailed(direction string)
	IncApproval(outcome string)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveMatches(string, int)    {}
func (NoopMetrics) IncNotificationCreated(string) {}
func (NoopMetrics) IncNotificationFailed(string)  {}
func (NoopMetrics) IncApproval(string)            {}
