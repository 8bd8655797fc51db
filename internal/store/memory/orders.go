package memory

import (
	"context"
	"sort"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

// CreateOrderFromCart inserts the order with its item snapshots and
// clears the user's cart under one mutex hold, so no other operation
// can observe an order without an emptied cart or vice versa. All
// validation happens before the first mutation; a failure leaves the
// store untouched.
func (s *Store) CreateOrderFromCart(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(items) == 0 {
		return store.ErrEmptyCart
	}
	if _, ok := s.users[o.UserID]; !ok {
		return store.ErrNotFound
	}

	o.ID = s.next("orders")
	o.Status = model.OrderPending
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = *o

	for i := range items {
		items[i].ID = s.next("order_items")
		items[i].OrderID = o.ID
		s.orderItems[items[i].ID] = items[i]
	}

	for id, it := range s.cartItems {
		if it.UserID == o.UserID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

func (s *Store) OrderByID(ctx context.Context, id uint64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		return &o, nil
	}
	return nil, nil
}

// ListOrders returns orders newest first, optionally filtered by
// owner and status.
func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) OrderItems(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.OrderItem{}
	for _, it := range s.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetOrderStatus enforces the legal transition table; terminal
// states reject every further change.
func (s *Store) SetOrderStatus(ctx context.Context, id uint64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	if !model.CanTransition(o.Status, status) {
		return store.ErrInvalidTransition
	}
	o.Status = status
	o.UpdatedAt = now()
	s.orders[id] = o
	return nil
}

func (s *Store) CreateRevision(ctx context.Context, r *model.OrderRevision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[r.OrderID]; !ok {
		return store.ErrNotFound
	}
	r.ID = s.next("order_revisions")
	if r.Status == "" {
		r.Status = model.RevisionPending
	}
	r.CreatedAt = now()
	s.revisions[r.ID] = *r
	return nil
}

func (s *Store) SetRevisionStatus(ctx context.Context, id uint64, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.revisions[id]
	if !ok {
		return false, nil
	}
	r.Status = status
	s.revisions[id] = r
	return true, nil
}

func (s *Store) ListRevisions(ctx context.Context, orderID uint64) ([]model.OrderRevision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.OrderRevision{}
	for _, r := range s.revisions {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
