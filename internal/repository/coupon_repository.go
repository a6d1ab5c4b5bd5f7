package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/carvohq/carvo-backend/internal/model"
)

// CouponRepo reads and consumes discount codes. Validation math lives on
// model.Coupon; this layer only fetches rows and spends usages.
type CouponRepo struct{ DB *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{DB: db} }

const couponColumns = "id, code, discount_percent, min_order_paise, usage_limit, used_count, active, expires_at, created_at"

// GetByCode fetches a coupon by its (case-insensitive) code.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var c model.Coupon
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE code=? LIMIT 1", code).
		Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.MinOrderPaise, &c.UsageLimit,
			&c.UsedCount, &c.Active, &c.ExpiresAt, &c.CreatedAt)
	return c, err
}

// GetByCodeTx is GetByCode inside an existing transaction, row-locked so
// checkout revalidation and usage consumption see consistent counters.
func (r *CouponRepo) GetByCodeTx(ctx context.Context, tx *sql.Tx, code string) (model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var c model.Coupon
	err := tx.QueryRowContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE code=? LIMIT 1 FOR UPDATE", code).
		Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.MinOrderPaise, &c.UsageLimit,
			&c.UsedCount, &c.Active, &c.ExpiresAt, &c.CreatedAt)
	return c, err
}

// ConsumeTx spends one usage of a coupon. The guarded UPDATE makes two
// concurrent checkouts unable to both take the last usage.
func (r *CouponRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE coupons SET used_count = used_count + 1 WHERE id=? AND (usage_limit = 0 OR used_count < usage_limit)",
		id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrCouponExhausted
	}
	return nil
}

// Create inserts a coupon (admin seeding).
func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO coupons (code, discount_percent, min_order_paise, usage_limit, active, expires_at)
		 VALUES (?,?,?,?,?,?)`,
		strings.ToUpper(strings.TrimSpace(c.Code)), c.DiscountPercent, c.MinOrderPaise,
		c.UsageLimit, c.Active, c.ExpiresAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	c.ID = uint64(id)
	return err
}
