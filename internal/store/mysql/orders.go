package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

const orderCols = "id,user_id,status,total_cents,contact_name,contact_email,contact_phone,message,created_at,updated_at"

// CreateOrderFromCart inserts the order and its item snapshots and
// clears the user's cart in one transaction. A failure anywhere rolls
// the whole thing back, so the cart is never cleared without an order
// existing or vice versa.
func (s *Store) CreateOrderFromCart(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	if len(items) == 0 {
		return store.ErrEmptyCart
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, status, total_cents, contact_name, contact_email, contact_phone, message) VALUES (?,?,?,?,?,?,?)",
		o.UserID, model.OrderPending, o.TotalCents, o.ContactName, o.ContactEmail, o.ContactPhone, o.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OrderPending

	// Bulk insert the snapshots in a single statement.
	q := "INSERT INTO order_items (order_id, product_name, price_cents, quantity) VALUES "
	args := make([]interface{}, 0, len(items)*4)
	for i := range items {
		if i > 0 {
			q += ","
		}
		q += "(?,?,?,?)"
		items[i].OrderID = o.ID
		args = append(args, o.ID, items[i].ProductName, items[i].PriceCents, items[i].Quantity)
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id=?", o.UserID); err != nil {
		return err
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM orders WHERE id=?", o.ID).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) OrderByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	err := s.db.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE id=? LIMIT 1", id).Scan(
		&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.ContactName, &o.ContactEmail, &o.ContactPhone, &o.Message, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]model.Order, error) {
	q := "SELECT " + orderCols + " FROM orders"
	conds := []string{}
	args := []interface{}{}
	if f.UserID != 0 {
		conds = append(conds, "user_id=?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id DESC"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.ContactName, &o.ContactEmail, &o.ContactPhone, &o.Message, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) OrderItems(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, order_id, product_name, price_cents, quantity FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.PriceCents, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SetOrderStatus reads the current status inside a transaction and
// applies the transition table before writing, so two racing updates
// cannot both move an order out of the same state illegally.
func (s *Store) SetOrderStatus(ctx context.Context, id uint64, status string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT status FROM orders WHERE id=? FOR UPDATE", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !model.CanTransition(current, status) {
		return store.ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=?", status, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) CreateRevision(ctx context.Context, r *model.OrderRevision) error {
	parent, err := s.OrderByID(ctx, r.OrderID)
	if err != nil {
		return err
	}
	if parent == nil {
		return store.ErrNotFound
	}
	if r.Status == "" {
		r.Status = model.RevisionPending
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO order_revisions (order_id, description, status) VALUES (?,?,?)",
		r.OrderID, r.Description, r.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return s.db.QueryRowContext(ctx,
		"SELECT created_at FROM order_revisions WHERE id=?", r.ID).Scan(&r.CreatedAt)
}

func (s *Store) SetRevisionStatus(ctx context.Context, id uint64, status string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE order_revisions SET status=? WHERE id=?", status, id)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_revisions WHERE id=?", id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Store) ListRevisions(ctx context.Context, orderID uint64) ([]model.OrderRevision, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, order_id, description, status, created_at FROM order_revisions WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderRevision{}
	for rows.Next() {
		var r model.OrderRevision
		if err := rows.Scan(&r.ID, &r.OrderID, &r.Description, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
