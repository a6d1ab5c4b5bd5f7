package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/carvohq/carvo-backend/internal/model"
)

// PartRepo manages the parts catalog. Stock mutations happen through the
// Tx helpers so checkout can lock rows and decrement atomically; the
// category part_count moves in the same transaction as every insert or
// delete.
type PartRepo struct{ DB *sql.DB }

func NewPartRepo(db *sql.DB) *PartRepo { return &PartRepo{DB: db} }

const partColumns = "id, category_id, seller_id, name, COALESCE(description,''), price_paise, stock_quantity, image_url, created_at, updated_at"

func scanPart(s interface{ Scan(...any) error }) (model.Part, error) {
	var p model.Part
	err := s.Scan(&p.ID, &p.CategoryID, &p.SellerID, &p.Name, &p.Description,
		&p.PricePaise, &p.StockQuantity, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns parts, optionally filtered by category and a name search
// term. Results are newest first.
func (r *PartRepo) List(ctx context.Context, categoryID uint64, search string) ([]model.Part, error) {
	q := "SELECT " + partColumns + " FROM parts"
	var conds []string
	var args []any
	if categoryID != 0 {
		conds = append(conds, "category_id=?")
		args = append(args, categoryID)
	}
	if search != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+search+"%")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches a single part.
func (r *PartRepo) GetByID(ctx context.Context, id uint64) (model.Part, error) {
	return scanPart(r.DB.QueryRowContext(ctx,
		"SELECT "+partColumns+" FROM parts WHERE id=? LIMIT 1", id))
}

// Create inserts a part and bumps its category's part_count in the same
// transaction.
func (r *PartRepo) Create(ctx context.Context, p *model.Part) error {
	tx, err := r.DB.BeginTx(ctx, nil)
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
		`INSERT INTO parts (category_id, seller_id, name, description, price_paise, stock_quantity, image_url)
		 VALUES (?,?,?,?,?,?,?)`,
		p.CategoryID, p.SellerID, p.Name, p.Description, p.PricePaise, p.StockQuantity, p.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := AdjustPartCountTx(ctx, tx, p.CategoryID, 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	p.ID = uint64(id)
	return nil
}

// Delete removes a part and decrements its category's part_count in the
// same transaction.
func (r *PartRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var categoryID uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT category_id FROM parts WHERE id=? FOR UPDATE", id).Scan(&categoryID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM parts WHERE id=?", id); err != nil {
		return err
	}
	if err := AdjustPartCountTx(ctx, tx, categoryID, -1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// LockByIDsTx loads and row-locks parts for checkout. Returned in a map
// keyed by ID; callers detect unknown parts by absence.
func (r *PartRepo) LockByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]model.Part, error) {
	if len(ids) == 0 {
		return map[uint64]model.Part{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT "+partColumns+" FROM parts WHERE id IN ("+placeholders+") FOR UPDATE", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]model.Part, len(ids))
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// DecrementStockTx reduces stock for a locked part. The guarded WHERE
// keeps stock_quantity from ever going negative even if the caller's
// check was stale.
func (r *PartRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE parts SET stock_quantity = stock_quantity - ? WHERE id=? AND stock_quantity >= ?",
		qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStockTx returns units to stock, used when an order is
// cancelled before handoff.
func (r *PartRepo) IncrementStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE parts SET stock_quantity = stock_quantity + ? WHERE id=?", qty, id)
	return err
}
