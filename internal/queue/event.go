// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published when a customer places an order.
// It carries enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type OrderCreatedEvent struct {
	OrderID      uint64   `json:"order_id"`
	UserID       uint64   `json:"user_id"`
	ContactEmail string   `json:"contact_email"`
	TotalCents   int64    `json:"total_cents"`
	Items        []string `json:"items"`
	CreatedAt    string   `json:"created_at"`
}

// LeadSubmittedEvent is published when the public contact form
// creates a new submission.
type LeadSubmittedEvent struct {
	SubmissionID uint64 `json:"submission_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Service      string `json:"service"`
	CreatedAt    string `json:"created_at"`
}
