package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// GalleryRepo manages marketing gallery items.
type GalleryRepo struct{ DB *sql.DB }

func NewGalleryRepo(db *sql.DB) *GalleryRepo { return &GalleryRepo{DB: db} }

// List returns all gallery items, newest first.
func (r *GalleryRepo) List(ctx context.Context) ([]model.GalleryItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, title, image_url, caption, created_at FROM gallery_items ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.GalleryItem
	for rows.Next() {
		var g model.GalleryItem
		if err := rows.Scan(&g.ID, &g.Title, &g.ImageURL, &g.Caption, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// InsertBulk seeds multiple items in one transaction.
func (r *GalleryRepo) InsertBulk(ctx context.Context, items []model.GalleryItem) error {
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
	for i := range items {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO gallery_items (title, image_url, caption) VALUES (?,?,?)",
			items[i].Title, items[i].ImageURL, items[i].Caption)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		items[i].ID = uint64(id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes one item; sql.ErrNoRows when it does not exist.
func (r *GalleryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM gallery_items WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
