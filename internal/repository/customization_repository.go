package repository

import (
	"context"
	"database/sql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// CustomizationRepo stores saved car configurations. The configuration
// blob is opaque JSON owned by the frontend visualiser.
type CustomizationRepo struct{ DB *sql.DB }

func NewCustomizationRepo(db *sql.DB) *CustomizationRepo { return &CustomizationRepo{DB: db} }

// Create inserts a customization and populates the generated ID.
func (r *CustomizationRepo) Create(ctx context.Context, c *model.Customization) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customizations (user_id, car_id, name, configuration, preview_token) VALUES (?,?,?,?,?)",
		c.UserID, c.CarID, c.Name, []byte(c.Configuration), c.PreviewToken)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	c.ID = uint64(id)
	return err
}

// ListByUser returns a customer's customizations, newest first.
func (r *CustomizationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Customization, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, car_id, name, configuration, preview_token, created_at
		 FROM customizations WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Customization
	for rows.Next() {
		var c model.Customization
		var cfg []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.CarID, &c.Name, &cfg, &c.PreviewToken, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Configuration = cfg
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a single customization.
func (r *CustomizationRepo) GetByID(ctx context.Context, id uint64) (model.Customization, error) {
	var c model.Customization
	var cfg []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, car_id, name, configuration, preview_token, created_at
		 FROM customizations WHERE id=? LIMIT 1`, id).
		Scan(&c.ID, &c.UserID, &c.CarID, &c.Name, &cfg, &c.PreviewToken, &c.CreatedAt)
	c.Configuration = cfg
	return c, err
}
