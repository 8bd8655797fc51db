package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

const addonCols = "id,name,price_cents,description,is_active,created_at,updated_at"

func (s *Store) CreateAddon(ctx context.Context, p *model.AddonProduct) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO addon_products (name, price_cents, description, is_active) VALUES (?,?,?,?)",
		p.Name, p.PriceCents, p.Description, p.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	created, err := s.AddonByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = created.CreatedAt
	p.UpdatedAt = created.UpdatedAt
	return nil
}

func (s *Store) AddonByID(ctx context.Context, id uint64) (*model.AddonProduct, error) {
	var p model.AddonProduct
	err := s.db.QueryRowContext(ctx,
		"SELECT "+addonCols+" FROM addon_products WHERE id=? LIMIT 1", id).Scan(
		&p.ID, &p.Name, &p.PriceCents, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateAddon(ctx context.Context, id uint64, upd store.AddonUpdate) (*model.AddonProduct, error) {
	p, err := s.AddonByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
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
	if _, err := s.db.ExecContext(ctx,
		"UPDATE addon_products SET name=?, price_cents=?, description=?, is_active=? WHERE id=?",
		p.Name, p.PriceCents, p.Description, p.IsActive, id); err != nil {
		return nil, err
	}
	return s.AddonByID(ctx, id)
}

func (s *Store) DeleteAddon(ctx context.Context, id uint64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM addon_products WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListAddons(ctx context.Context, activeOnly bool) ([]model.AddonProduct, error) {
	q := "SELECT " + addonCols + " FROM addon_products"
	if activeOnly {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AddonProduct{}
	for rows.Next() {
		var p model.AddonProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertCartItem folds a repeat add of the same product into the
// existing line via the unique (user_id, addon_product_id) key.
func (s *Store) UpsertCartItem(ctx context.Context, userID, productID uint64, qty uint32) (*model.CartItem, error) {
	p, err := s.AddonByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, store.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, addon_product_id, quantity) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		userID, productID, qty); err != nil {
		return nil, err
	}
	return s.cartItemByUserProduct(ctx, userID, productID)
}

func (s *Store) cartItemByUserProduct(ctx context.Context, userID, productID uint64) (*model.CartItem, error) {
	var it model.CartItem
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, addon_product_id, quantity, created_at, updated_at FROM cart_items WHERE user_id=? AND addon_product_id=? LIMIT 1",
		userID, productID).Scan(&it.ID, &it.UserID, &it.AddonProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) UpdateCartItemQty(ctx context.Context, userID, itemID uint64, qty uint32) (*model.CartItem, error) {
	// RowsAffected is 0 both for a missing row and for a no-op update,
	// so the result is read back instead of checked.
	_, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE id=? AND user_id=?", qty, itemID, userID)
	if err != nil {
		return nil, err
	}
	var it model.CartItem
	err = s.db.QueryRowContext(ctx,
		"SELECT id, user_id, addon_product_id, quantity, created_at, updated_at FROM cart_items WHERE id=? AND user_id=? LIMIT 1",
		itemID, userID).Scan(&it.ID, &it.UserID, &it.AddonProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) DeleteCartItem(ctx context.Context, userID, itemID uint64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id=? AND user_id=?", itemID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListCartItems(ctx context.Context, userID uint64) ([]model.CartItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, addon_product_id, quantity, created_at, updated_at FROM cart_items WHERE user_id=? ORDER BY id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.AddonProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
