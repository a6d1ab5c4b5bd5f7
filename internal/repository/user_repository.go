package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/carvohq/carvo-backend/internal/model"
	"github.com/carvohq/carvo-backend/internal/utils"
)

// UserRepo provides CRUD operations for users and their role-specific
// profiles. A user owns exactly one profile row, in the table selected by
// users.role; profile tables carry a unique user_id key so a second
// profile is unrepresentable.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,role,name,phone,is_verified,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Phone,
		&u.IsVerified, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user with a hashed password and an empty profile row
// for the given role, all in one transaction. Returns the new user ID.
func (r *UserRepo) Create(ctx context.Context, email, password, role, name, phone string, cost int) (uint64, error) {
	return r.create(ctx, email, password, role, name, phone, cost, false, model.Profile{})
}

// CreateVerified is Create for accounts that arrive pre-verified, such as
// Google sign-ins and admin-provisioned users.
func (r *UserRepo) CreateVerified(ctx context.Context, email, password, role, name, phone string, cost int, p model.Profile) (uint64, error) {
	return r.create(ctx, email, password, role, name, phone, cost, true, p)
}

func (r *UserRepo) create(ctx context.Context, email, password, role, name, phone string, cost int, verified bool, p model.Profile) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, name, phone, is_verified) VALUES (?,?,?,?,?,?)",
		email, hash, role, name, phone, verified)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertProfileTx(ctx, tx, uint64(id), role, p); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// insertProfileTx writes the role-specific profile row. ADMIN carries no
// extra data and gets no row.
func insertProfileTx(ctx context.Context, tx *sql.Tx, userID uint64, role string, p model.Profile) error {
	var err error
	switch role {
	case model.RoleCustomer:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO customer_profiles (user_id, shipping_address) VALUES (?,?)",
			userID, p.ShippingAddress)
	case model.RoleSeller:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO seller_profiles (user_id, shop_name, gst_number) VALUES (?,?,?)",
			userID, p.ShopName, p.GSTNumber)
	case model.RoleProvider:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO provider_profiles (user_id, workshop_name, service_area) VALUES (?,?,?)",
			userID, p.WorkshopName, p.ServiceArea)
	case model.RoleDelivery:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO delivery_profiles (user_id, vehicle_number, zone) VALUES (?,?,?)",
			userID, p.VehicleNumber, p.Zone)
	case model.RoleSupport:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO support_profiles (user_id, department) VALUES (?,?)",
			userID, p.Department)
	}
	return err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// MarkVerified flips is_verified after a successful signup OTP check.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET is_verified=1 WHERE id=?", id)
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// Update applies admin edits to the base user row. Role changes are not
// supported; the profile tables would go stale.
func (r *UserRepo) Update(ctx context.Context, id uint64, name, phone string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone=?, is_active=? WHERE id=?", name, phone, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		// distinguish "no such user" from "nothing changed"
		var exists int
		if e := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", id).Scan(&exists); e == sql.ErrNoRows {
			return sql.ErrNoRows
		}
	}
	return err
}

// List returns all users, optionally filtered by role, newest first.
func (r *UserRepo) List(ctx context.Context, role string) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if role != "" {
		q += " WHERE role=?"
		args = append(args, role)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Phone,
			&u.IsVerified, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetProfile loads the role-specific profile for a user. Users whose role
// has no profile table return the zero Profile.
func (r *UserRepo) GetProfile(ctx context.Context, userID uint64, role string) (model.Profile, error) {
	var p model.Profile
	var err error
	switch role {
	case model.RoleCustomer:
		err = r.DB.QueryRowContext(ctx,
			"SELECT COALESCE(shipping_address,'') FROM customer_profiles WHERE user_id=?", userID).
			Scan(&p.ShippingAddress)
	case model.RoleSeller:
		err = r.DB.QueryRowContext(ctx,
			"SELECT shop_name, gst_number FROM seller_profiles WHERE user_id=?", userID).
			Scan(&p.ShopName, &p.GSTNumber)
	case model.RoleProvider:
		err = r.DB.QueryRowContext(ctx,
			"SELECT workshop_name, service_area FROM provider_profiles WHERE user_id=?", userID).
			Scan(&p.WorkshopName, &p.ServiceArea)
	case model.RoleDelivery:
		err = r.DB.QueryRowContext(ctx,
			"SELECT vehicle_number, zone FROM delivery_profiles WHERE user_id=?", userID).
			Scan(&p.VehicleNumber, &p.Zone)
	case model.RoleSupport:
		err = r.DB.QueryRowContext(ctx,
			"SELECT department FROM support_profiles WHERE user_id=?", userID).
			Scan(&p.Department)
	}
	if err == sql.ErrNoRows {
		return model.Profile{}, nil
	}
	return p, err
}
