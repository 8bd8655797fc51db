// Package store defines the storage contract shared by the in-memory
// and MySQL backends, together with the sentinel errors both return.
// These sentinel values allow higher layers such as handlers to
// distinguish failure scenarios: ErrEmailExists and ErrSlugExists
// signal uniqueness conflicts (HTTP 409), ErrNotFound signals a
// missing parent row for operations that require one, and
// ErrInvalidTransition signals an illegal order status change.
package store

import "errors"

// ErrEmailExists is returned when creating a user with an email that
// is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when creating or updating a blog post
// with a slug that is already taken.
var ErrSlugExists = errors.New("slug already exists")

// ErrNotFound is returned when an operation requires an existing
// parent record that does not exist, such as adding a note to an
// unknown submission. Plain reads report absence as (nil, nil)
// instead.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when an order status change is
// not in the legal transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrEmptyCart is returned when creating an order for a user whose
// cart has no items.
var ErrEmptyCart = errors.New("cart is empty")
