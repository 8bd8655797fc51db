package model

import "time"

// Order statuses. Completed and cancelled are terminal; the legal
// transitions are encoded in OrderTransitions below.
const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// OrderTransitions maps each order status to the set of statuses it
// may move to. Terminal states map to an empty set.
var OrderTransitions = map[string][]string{
	OrderPending:    {OrderInProgress, OrderCancelled},
	OrderInProgress: {OrderCompleted, OrderCancelled},
	OrderCompleted:  {},
	OrderCancelled:  {},
}

// CanTransition reports whether an order may move from one status to
// another. Unknown statuses never transition.
func CanTransition(from, to string) bool {
	for _, s := range OrderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Revision statuses for customer change requests against an order.
const (
	RevisionPending    = "pending"
	RevisionInProgress = "in_progress"
	RevisionResolved   = "resolved"
)

// ValidRevisionStatus reports whether s is a known revision status.
func ValidRevisionStatus(s string) bool {
	switch s {
	case RevisionPending, RevisionInProgress, RevisionResolved:
		return true
	}
	return false
}

// Order records a customer's purchase of one or more add-on products.
// TotalCents equals the sum of its items' price*quantity at creation
// time; item prices are snapshots and do not follow later catalog
// changes. Contact fields are copied from the checkout form.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user who placed the order.
//  Status       – state of the order (see constants above).
//  TotalCents   – total price in cents across all items.
//  ContactName  – checkout contact name.
//  ContactEmail – checkout contact email.
//  ContactPhone – checkout contact phone.
//  Message      – optional note from the customer.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Order struct {
	ID           uint64    `json:"id"`            // orders.id
	UserID       uint64    `json:"user_id"`       // orders.user_id
	Status       string    `json:"status"`        // orders.status
	TotalCents   int64     `json:"total_cents"`   // orders.total_cents
	ContactName  string    `json:"contact_name"`  // orders.contact_name
	ContactEmail string    `json:"contact_email"` // orders.contact_email
	ContactPhone string    `json:"contact_phone"` // orders.contact_phone
	Message      string    `json:"message"`       // orders.message (may be empty)
	CreatedAt    time.Time `json:"created_at"`    // orders.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // orders.updated_at
}

// OrderItem is an immutable snapshot of one cart line at the moment
// the order was created. Name and price are copied from the add-on
// product so historical orders survive catalog edits.
type OrderItem struct {
	ID          uint64 `json:"id"`           // order_items.id
	OrderID     uint64 `json:"order_id"`     // order_items.order_id
	ProductName string `json:"product_name"` // order_items.product_name (snapshot)
	PriceCents  int64  `json:"price_cents"`  // order_items.price_cents (snapshot)
	Quantity    uint32 `json:"quantity"`     // order_items.quantity
}

// OrderRevision is a customer change request against an order.
type OrderRevision struct {
	ID          uint64    `json:"id"`          // order_revisions.id
	OrderID     uint64    `json:"order_id"`    // order_revisions.order_id
	Description string    `json:"description"` // order_revisions.description
	Status      string    `json:"status"`      // order_revisions.status
	CreatedAt   time.Time `json:"created_at"`  // order_revisions.created_at
}
