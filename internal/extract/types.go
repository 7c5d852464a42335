package extract

const (
	// Placeholder fills fields the transcript did not mention.
	Placeholder = "N/A"

	// DefaultStatus is assumed when no application status is spoken.
	DefaultStatus = "applied"
)

// Record holds the five job-application fields pulled from a transcript.
// Every field is always populated: missing values carry Placeholder and
// a missing status carries DefaultStatus, so downstream rows keep a
// fixed shape.
type Record struct {
	// Company is the company applied to.
	Company string `json:"company"`
	// Role is the job role or title.
	Role string `json:"role"`
	// ResumeVersion identifies which resume revision was sent.
	ResumeVersion string `json:"resumeVersion"`
	// Platform is where the application was submitted.
	Platform string `json:"platform"`
	// Status is the application status.
	Status string `json:"status"`
}
