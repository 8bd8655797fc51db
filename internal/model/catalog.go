package model

import "time"

// AddonProduct is a purchasable supplementary service shown on the
// add-ons page. Prices are integer cents. Inactive products are
// hidden from the storefront but retained so historical orders keep
// referencing a real row.
type AddonProduct struct {
	ID          uint64    `json:"id"`          // addon_products.id
	Name        string    `json:"name"`        // addon_products.name
	PriceCents  int64     `json:"price_cents"` // addon_products.price_cents
	Description string    `json:"description"` // addon_products.description
	IsActive    bool      `json:"is_active"`   // addon_products.is_active
	CreatedAt   time.Time `json:"created_at"`  // addon_products.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // addon_products.updated_at
}

// CartItem is one line of a user's cart. At most one line exists per
// (user, product) pair; adding the same product again increments the
// quantity instead of inserting a new row.
type CartItem struct {
	ID             uint64    `json:"id"`               // cart_items.id
	UserID         uint64    `json:"user_id"`          // cart_items.user_id
	AddonProductID uint64    `json:"addon_product_id"` // cart_items.addon_product_id
	Quantity       uint32    `json:"quantity"`         // cart_items.quantity (>= 1)
	CreatedAt      time.Time `json:"created_at"`       // cart_items.created_at
	UpdatedAt      time.Time `json:"updated_at"`       // cart_items.updated_at
}
