package model

import (
	"errors"
	"time"
)

// Coupon validation errors. Handlers translate these into 400 responses
// with the message surfaced to the user.
var (
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrCouponMinOrder  = errors.New("order amount below coupon minimum")
)

// Coupon is a percentage discount code. UsageLimit zero means unlimited.
type Coupon struct {
	ID              uint64     // coupons.id
	Code            string     // coupons.code
	DiscountPercent uint32     // coupons.discount_percent
	MinOrderPaise   int64      // coupons.min_order_paise
	UsageLimit      uint32     // coupons.usage_limit (0 = unlimited)
	UsedCount       uint32     // coupons.used_count
	Active          bool       // coupons.active
	ExpiresAt       *time.Time // coupons.expires_at (nullable)
	CreatedAt       time.Time  // coupons.created_at
}

// Discount computes the discount for an order amount at the given time.
// It is deterministic for fixed inputs, which makes /coupons/validate
// idempotent: the same code and amount always yield the same discount.
// The returned discount never exceeds the order amount.
func (c *Coupon) Discount(orderPaise int64, now time.Time) (int64, error) {
	if !c.Active {
		return 0, ErrCouponInactive
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return 0, ErrCouponExpired
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return 0, ErrCouponExhausted
	}
	if orderPaise < c.MinOrderPaise {
		return 0, ErrCouponMinOrder
	}
	d := orderPaise * int64(c.DiscountPercent) / 100
	if d > orderPaise {
		d = orderPaise
	}
	return d, nil
}
