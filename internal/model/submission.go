package model

import "time"

// Submission statuses. A lead starts as new and is moved by staff
// through the pipeline; delivered and lost are end states but no
// transition table is enforced for leads.
const (
	SubmissionNew        = "new"
	SubmissionInProgress = "in_progress"
	SubmissionPending    = "pending"
	SubmissionDelivered  = "delivered"
	SubmissionLost       = "lost"
)

// ValidSubmissionStatus reports whether s is a known lead status.
func ValidSubmissionStatus(s string) bool {
	switch s {
	case SubmissionNew, SubmissionInProgress, SubmissionPending, SubmissionDelivered, SubmissionLost:
		return true
	}
	return false
}

// Submission is a lead record created by the public contact form.
// Submissions are anonymous (owned by no user) and are mutated only
// by staff through status changes and notes.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – contact name supplied by the visitor.
//  Email     – contact email.
//  Phone     – contact phone number.
//  City      – optional city.
//  Service   – service of interest; required.
//  Message   – free-form message.
//  Status    – pipeline status (see constants above).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Submission struct {
	ID        uint64    `json:"id"`         // submissions.id
	Name      string    `json:"name"`       // submissions.name
	Email     string    `json:"email"`      // submissions.email
	Phone     string    `json:"phone"`      // submissions.phone
	City      string    `json:"city"`       // submissions.city (may be empty)
	Service   string    `json:"service"`    // submissions.service
	Message   string    `json:"message"`    // submissions.message
	Status    string    `json:"status"`     // submissions.status
	CreatedAt time.Time `json:"created_at"` // submissions.created_at
	UpdatedAt time.Time `json:"updated_at"` // submissions.updated_at
}

// Note is an append-only staff note attached to a submission.
type Note struct {
	ID           uint64    `json:"id"`            // notes.id
	SubmissionID uint64    `json:"submission_id"` // notes.submission_id
	UserID       uint64    `json:"user_id"`       // notes.user_id (author)
	Body         string    `json:"body"`          // notes.body
	CreatedAt    time.Time `json:"created_at"`    // notes.created_at
}
