package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// PaymentRepo persists payment attempts. A payment targets exactly one of
// an order or a booking; Create rejects rows that violate that
// exclusivity since the schema cannot express it.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = "id, order_id, booking_id, amount_paise, method, status, transaction_id, reference, created_at, updated_at"

func scanPayment(s interface{ Scan(...any) error }) (model.Payment, error) {
	var p model.Payment
	err := s.Scan(&p.ID, &p.OrderID, &p.BookingID, &p.AmountPaise, &p.Method,
		&p.Status, &p.TransactionID, &p.Reference, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a payment row and populates the generated ID.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	if (p.OrderID == nil) == (p.BookingID == nil) {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO payments (order_id, booking_id, amount_paise, method, status, reference)
		 VALUES (?,?,?,?,?,?)`,
		p.OrderID, p.BookingID, p.AmountPaise, p.Method, p.Status, p.Reference)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	p.ID = uint64(id)
	return err
}

// GetByID fetches a payment.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	return scanPayment(r.DB.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id=? LIMIT 1", id))
}

// GetForUpdateTx loads and row-locks a payment for confirmation.
func (r *PaymentRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Payment, error) {
	return scanPayment(tx.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id=? LIMIT 1 FOR UPDATE", id))
}

// CompleteTx marks a locked payment COMPLETED, storing the transaction
// reference reported by the client.
func (r *PaymentRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id uint64, transactionID string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE payments SET status='COMPLETED', transaction_id=? WHERE id=?", transactionID, id)
	return err
}

// CompletePendingForOrderTx marks any pending payment on the order
// COMPLETED. Used at the delivery handoff to settle COD.
func (r *PaymentRepo) CompletePendingForOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE payments SET status='COMPLETED' WHERE order_id=? AND status='PENDING'", orderID)
	return err
}

// ListByOrder returns payments recorded against an order.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE order_id=? ORDER BY id ASC", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
