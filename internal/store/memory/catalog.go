package memory

import (
	"context"
	"sort"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

func (s *Store) CreateAddon(ctx context.Context, p *model.AddonProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.next("addon_products")
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	s.addons[p.ID] = *p
	return nil
}

func (s *Store) AddonByID(ctx context.Context, id uint64) (*model.AddonProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.addons[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) UpdateAddon(ctx context.Context, id uint64, upd store.AddonUpdate) (*model.AddonProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.addons[id]
	if !ok {
		return nil, nil
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.PriceCents != nil {
		p.PriceCents = *upd.PriceCents
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	p.UpdatedAt = now()
	s.addons[id] = p
	return &p, nil
}

// DeleteAddon removes a product outright. Handlers prefer
// deactivation so historical orders stay explainable; delete exists
// for catalog mistakes that never sold.
func (s *Store) DeleteAddon(ctx context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.addons[id]; !ok {
		return false, nil
	}
	delete(s.addons, id)
	return true, nil
}

func (s *Store) ListAddons(ctx context.Context, activeOnly bool) ([]model.AddonProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AddonProduct, 0, len(s.addons))
	for _, p := range s.addons {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertCartItem(ctx context.Context, userID, productID uint64, qty uint32) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.addons[productID]; !ok {
		return nil, store.ErrNotFound
	}
	for id, it := range s.cartItems {
		if it.UserID == userID && it.AddonProductID == productID {
			it.Quantity += qty
			it.UpdatedAt = now()
			s.cartItems[id] = it
			return &it, nil
		}
	}
	id := s.next("cart_items")
	it := model.CartItem{
		ID:             id,
		UserID:         userID,
		AddonProductID: productID,
		Quantity:       qty,
		CreatedAt:      now(),
	}
	it.UpdatedAt = it.CreatedAt
	s.cartItems[id] = it
	return &it, nil
}

func (s *Store) UpdateCartItemQty(ctx context.Context, userID, itemID uint64, qty uint32) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.cartItems[itemID]
	if !ok || it.UserID != userID {
		return nil, nil
	}
	it.Quantity = qty
	it.UpdatedAt = now()
	s.cartItems[itemID] = it
	return &it, nil
}

func (s *Store) DeleteCartItem(ctx context.Context, userID, itemID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.cartItems[itemID]
	if !ok || it.UserID != userID {
		return false, nil
	}
	delete(s.cartItems, itemID)
	return true, nil
}

func (s *Store) ListCartItems(ctx context.Context, userID uint64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.CartItem{}
	for _, it := range s.cartItems {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
