package domain

type SubmissionStatus string

const (
	StatusIdle       SubmissionStatus = "Idle"
	StatusSubmitting SubmissionStatus = "Submitting"
	StatusSucceeded  SubmissionStatus = "Succeeded"
	StatusFailed     SubmissionStatus = "Failed"
)

type PrefillSource string

const (
	PrefillNone           PrefillSource = "None"
	PrefillStoredIdentity PrefillSource = "StoredIdentity"
	PrefillRemoteProfile  PrefillSource = "RemoteProfile"
)

// ReservationFormState is a snapshot of one form controller.
type ReservationFormState struct {
	Fields           map[string]string `json:"fields"`
	FieldErrors      map[string]string `json:"fieldErrors,omitempty"`
	SubmissionStatus SubmissionStatus  `json:"submissionStatus"`
	ErrorMessage     string            `json:"errorMessage,omitempty"`
	PrefillSource    PrefillSource     `json:"prefillSource"`
}
