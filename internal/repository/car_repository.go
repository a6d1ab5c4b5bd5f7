package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// CarRepo reads the base vehicles that customizations attach to.
type CarRepo struct{ DB *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{DB: db} }

// List returns every car, newest model year first.
func (r *CarRepo) List(ctx context.Context) ([]model.Car, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, make, model, year, base_image_url, created_at FROM cars ORDER BY year DESC, make ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Car
	for rows.Next() {
		var c model.Car
		if err := rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.BaseImageURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a single car.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
	var c model.Car
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, make, model, year, base_image_url, created_at FROM cars WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.BaseImageURL, &c.CreatedAt)
	return c, err
}
