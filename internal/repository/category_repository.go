package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// CategoryRepo manages part categories. part_count is only ever touched
// through the *Tx helpers so it stays inside the part mutation's
// transaction.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, slug, part_count, created_at FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.PartCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetBySlug fetches a category by its URL slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, slug, part_count, created_at FROM categories WHERE slug=? LIMIT 1", slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.PartCount, &c.CreatedAt)
	return c, err
}

// Create inserts a category and returns its ID.
func (r *CategoryRepo) Create(ctx context.Context, name, slug string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, slug) VALUES (?,?)", name, slug)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// AdjustPartCountTx moves the denormalized counter by delta within an
// existing transaction. Clamped at zero on the way down.
func AdjustPartCountTx(ctx context.Context, tx *sql.Tx, categoryID uint64, delta int) error {
	if delta >= 0 {
		_, err := tx.ExecContext(ctx,
			"UPDATE categories SET part_count = part_count + ? WHERE id=?", delta, categoryID)
		return err
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE categories SET part_count = IF(part_count >= ?, part_count - ?, 0) WHERE id=?",
		-delta, -delta, categoryID)
	return err
}
