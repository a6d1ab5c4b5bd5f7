package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/carvohq/carvo-backend/internal/model"
)

// OrderRepo provides CRUD operations for orders and their line items.
// Checkout, delivery transitions and OTP bookkeeping all run inside
// transactions started by the handlers; the Tx variants here never
// commit. All timestamps are UTC.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderColumns = `id, user_id, status, subtotal_paise, discount_paise, total_paise,
	coupon_code, shipping_address, delivery_user_id, delivery_otp, otp_expires_at,
	otp_attempts, created_at, updated_at`

func scanOrder(s interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := s.Scan(&o.ID, &o.UserID, &o.Status, &o.SubtotalPaise, &o.DiscountPaise,
		&o.TotalPaise, &o.CouponCode, &o.ShippingAddress, &o.DeliveryUserID,
		&o.DeliveryOTP, &o.OTPExpiresAt, &o.OTPAttempts, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateTx inserts an order row within an existing transaction and
// populates the generated ID.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, status, subtotal_paise, discount_paise, total_paise, coupon_code, shipping_address)
		 VALUES (?,?,?,?,?,?,?)`,
		o.UserID, o.Status, o.SubtotalPaise, o.DiscountPaise, o.TotalPaise, o.CouponCode, o.ShippingAddress)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CreateItemsBulkTx inserts the order's line items.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	for i := range items {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, part_id, quantity, price_paise) VALUES (?,?,?,?)",
			items[i].OrderID, items[i].PartID, items[i].Quantity, items[i].PricePaise)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		items[i].ID = uint64(id)
	}
	return nil
}

// GetByID fetches a single order.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	return scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", id))
}

// GetForUpdateTx loads and row-locks an order. Used by every state
// transition so concurrent starts/verifies serialize on the row.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	return scanOrder(tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1 FOR UPDATE", id))
}

// Items returns the line items of an order.
func (r *OrderRepo) Items(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, part_id, quantity, price_paise, created_at FROM order_items WHERE order_id=? ORDER BY id ASC",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PartID, &it.Quantity, &it.PricePaise, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ItemsForUser returns every item of every order the user owns, keyed
// by order id. One query instead of one per order.
func (r *OrderRepo) ItemsForUser(ctx context.Context, userID uint64) (map[uint64][]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT i.id, i.order_id, i.part_id, i.quantity, i.price_paise, i.created_at
		   FROM order_items i JOIN orders o ON o.id = i.order_id
		  WHERE o.user_id=? ORDER BY i.order_id DESC, i.id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]model.OrderItem)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PartID, &it.Quantity, &it.PricePaise, &it.CreatedAt); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// ListByUser returns a customer's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	return r.list(ctx, "user_id=?", userID)
}

// ListAll returns every order, newest first (admin view).
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListAssignments returns orders assigned to a delivery agent that still
// need action (shipped or mid-delivery).
func (r *OrderRepo) ListAssignments(ctx context.Context, agentID uint64) ([]model.Order, error) {
	return r.list(ctx, "delivery_user_id=? AND status IN ('SHIPPED','OUT_FOR_DELIVERY')", agentID)
}

func (r *OrderRepo) list(ctx context.Context, where string, args ...any) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE "+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]model.Order, error) {
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatusTx moves a locked order to a new status. Transition
// legality is the caller's responsibility (checked against the model
// transition table before calling).
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.OrderStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=?", status, id)
	return err
}

// AssignDeliveryTx sets the delivery agent for an order.
func (r *OrderRepo) AssignDeliveryTx(ctx context.Context, tx *sql.Tx, id, agentID uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE orders SET delivery_user_id=? WHERE id=?", agentID, id)
	return err
}

// SetDeliveryOTPTx stores a freshly generated handoff code, its expiry,
// and resets the attempt counter. Called on the shipped→out_for_delivery
// transition.
func (r *OrderRepo) SetDeliveryOTPTx(ctx context.Context, tx *sql.Tx, id uint64, code string, exp time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET status='OUT_FOR_DELIVERY', delivery_otp=?, otp_expires_at=?, otp_attempts=0 WHERE id=?",
		code, exp, id)
	return err
}

// RecordOTPAttemptTx bumps the failed-verification counter.
func (r *OrderRepo) RecordOTPAttemptTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE orders SET otp_attempts=otp_attempts+1 WHERE id=?", id)
	return err
}

// CompleteDeliveryTx transitions a locked order to DELIVERED and clears
// the OTP state so the spent code can never verify again.
func (r *OrderRepo) CompleteDeliveryTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET status='DELIVERED', delivery_otp=NULL, otp_expires_at=NULL WHERE id=?", id)
	return err
}
