package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/carvohq/carvo-backend/internal/model"
)

// InvoiceRepo persists invoices generated on demand for orders. The
// unique order_id key makes generation idempotent at the storage level.
type InvoiceRepo struct{ DB *sql.DB }

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{DB: db} }

// GetByOrder returns the invoice for an order, or sql.ErrNoRows when it
// has not been generated yet.
func (r *InvoiceRepo) GetByOrder(ctx context.Context, orderID uint64) (model.Invoice, error) {
	var inv model.Invoice
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, order_id, number, subtotal_paise, discount_paise, total_paise, issued_at
		 FROM invoices WHERE order_id=? LIMIT 1`, orderID).
		Scan(&inv.ID, &inv.OrderID, &inv.Number, &inv.SubtotalPaise,
			&inv.DiscountPaise, &inv.TotalPaise, &inv.IssuedAt)
	return inv, err
}

// Create inserts an invoice. A duplicate-key error from a concurrent
// generate is reported as ErrConflict; callers re-read in that case.
func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO invoices (order_id, number, subtotal_paise, discount_paise, total_paise)
		 VALUES (?,?,?,?,?)`,
		inv.OrderID, inv.Number, inv.SubtotalPaise, inv.DiscountPaise, inv.TotalPaise)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	inv.ID = uint64(id)
	return err
}
