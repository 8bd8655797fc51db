package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/queue"
	"github.com/brightline/agency-server/internal/store"
)

// ErrForbidden is returned when an actor is not allowed to perform
// an order operation, such as a customer changing someone else's
// order or marking their own order completed.
var ErrForbidden = errors.New("forbidden")

// ErrRevisionClosed is returned when a revision is requested against
// an order that is still pending or already cancelled.
var ErrRevisionClosed = errors.New("order does not accept revisions in its current status")

// ErrQuantity is returned for a cart quantity below one.
var ErrQuantity = errors.New("quantity must be at least 1")

// Contact carries the checkout contact snapshot.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// OrderService implements the cart accumulation and order lifecycle
// workflow on top of the store.
type OrderService struct {
	store store.Store
	audit *AuditService

	// publish lets tests intercept event publishing; defaults to
	// PublishEvent.
	publish func(ctx context.Context, queueName string, event interface{}) error
}

// NewOrderService wires the order workflow.
func NewOrderService(s store.Store, audit *AuditService) *OrderService {
	return &OrderService{store: s, audit: audit, publish: PublishEvent}
}

// AddToCart puts qty units of a product into the user's cart,
// folding into an existing line for the same product. Inactive or
// unknown products are rejected identically so the endpoint does not
// reveal the catalog's inactive entries.
func (o *OrderService) AddToCart(ctx context.Context, userID, productID uint64, qty uint32) (*model.CartItem, error) {
	if qty < 1 {
		return nil, ErrQuantity
	}
	p, err := o.store.AddonByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, store.ErrNotFound
	}
	return o.store.UpsertCartItem(ctx, userID, productID, qty)
}

// Checkout turns the user's cart into a pending order. Each cart
// line is snapshotted into an immutable order item (name and price
// copied at this instant) and the cart is cleared in the same
// transaction; the store guarantees all-or-nothing.
func (o *OrderService) Checkout(ctx context.Context, userID uint64, contact Contact, message string) (*model.Order, []model.OrderItem, error) {
	lines, err := o.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, store.ErrEmptyCart
	}

	items := make([]model.OrderItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		p, err := o.store.AddonByID(ctx, line.AddonProductID)
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			return nil, nil, store.ErrNotFound
		}
		items = append(items, model.OrderItem{
			ProductName: p.Name,
			PriceCents:  p.PriceCents,
			Quantity:    line.Quantity,
		})
		total += p.PriceCents * int64(line.Quantity)
	}

	ord := &model.Order{
		UserID:       userID,
		TotalCents:   total,
		ContactName:  contact.Name,
		ContactEmail: contact.Email,
		ContactPhone: contact.Phone,
		Message:      message,
	}
	if err := o.store.CreateOrderFromCart(ctx, ord, items); err != nil {
		return nil, nil, err
	}

	o.audit.Log(ctx, userID, "order.create", "order", ord.ID)

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.ProductName
	}
	ev := queue.OrderCreatedEvent{
		OrderID:      ord.ID,
		UserID:       userID,
		ContactEmail: ord.ContactEmail,
		TotalCents:   total,
		Items:        names,
		CreatedAt:    ord.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := o.publish(ctx, OrderCreatedQueue, ev); err != nil {
		log.Printf("orders: publish order.created failed: %v", err)
	}
	return ord, items, nil
}

// UpdateStatus applies a status transition on behalf of an actor.
// Staff may perform any transition in the legal table; a customer
// may only cancel their own pending order. Illegal transitions fail
// with store.ErrInvalidTransition and leave the status unchanged.
func (o *OrderService) UpdateStatus(ctx context.Context, orderID uint64, newStatus string, actor *model.User) error {
	ord, err := o.store.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if ord == nil {
		return store.ErrNotFound
	}
	if !model.IsStaff(actor.Role) {
		if ord.UserID != actor.ID {
			return ErrForbidden
		}
		if newStatus != model.OrderCancelled {
			return ErrForbidden
		}
		if ord.Status != model.OrderPending {
			// Cancelling an order whose work already started is a
			// permission problem; cancelling one in a terminal state
			// is a transition problem.
			if model.CanTransition(ord.Status, newStatus) {
				return ErrForbidden
			}
			return store.ErrInvalidTransition
		}
	}
	if err := o.store.SetOrderStatus(ctx, orderID, newStatus); err != nil {
		return err
	}
	o.audit.Log(ctx, actor.ID, "order.status:"+newStatus, "order", orderID)
	return nil
}

// RequestRevision records a customer change request. Revisions are
// accepted only while the order is in progress or completed; the
// actor must own the order unless they are staff.
func (o *OrderService) RequestRevision(ctx context.Context, orderID uint64, description string, actor *model.User) (*model.OrderRevision, error) {
	ord, err := o.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, store.ErrNotFound
	}
	if !model.IsStaff(actor.Role) && ord.UserID != actor.ID {
		return nil, ErrForbidden
	}
	if ord.Status != model.OrderInProgress && ord.Status != model.OrderCompleted {
		return nil, ErrRevisionClosed
	}
	rev := &model.OrderRevision{OrderID: orderID, Description: description}
	if err := o.store.CreateRevision(ctx, rev); err != nil {
		return nil, err
	}
	o.audit.Log(ctx, actor.ID, "revision.create", "order_revision", rev.ID)
	return rev, nil
}
