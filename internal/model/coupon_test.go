package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponDiscount(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(24 * time.Hour)

	save10 := Coupon{
		Code:            "SAVE10",
		DiscountPercent: 10,
		MinOrderPaise:   50000, // ₹500
		Active:          true,
		ExpiresAt:       &later,
	}

	t.Run("ten percent off a qualifying cart", func(t *testing.T) {
		d, err := save10.Discount(450000, now)
		require.NoError(t, err)
		assert.Equal(t, int64(45000), d)
	})

	t.Run("below minimum order", func(t *testing.T) {
		_, err := save10.Discount(49999, now)
		assert.ErrorIs(t, err, ErrCouponMinOrder)
	})

	t.Run("exactly at minimum order", func(t *testing.T) {
		d, err := save10.Discount(50000, now)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), d)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := save10.Discount(450000, later.Add(time.Second))
		assert.ErrorIs(t, err, ErrCouponExpired)
	})

	t.Run("inactive", func(t *testing.T) {
		c := save10
		c.Active = false
		_, err := c.Discount(450000, now)
		assert.ErrorIs(t, err, ErrCouponInactive)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		c := save10
		c.UsageLimit = 3
		c.UsedCount = 3
		_, err := c.Discount(450000, now)
		assert.ErrorIs(t, err, ErrCouponExhausted)
	})

	t.Run("zero usage limit is unlimited", func(t *testing.T) {
		c := save10
		c.UsageLimit = 0
		c.UsedCount = 100000
		_, err := c.Discount(450000, now)
		assert.NoError(t, err)
	})

	t.Run("no expiry means no expiry check", func(t *testing.T) {
		c := save10
		c.ExpiresAt = nil
		d, err := c.Discount(100000, now.AddDate(10, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, int64(10000), d)
	})

	t.Run("hundred percent caps at order amount", func(t *testing.T) {
		c := Coupon{Code: "FREE", DiscountPercent: 100, Active: true}
		d, err := c.Discount(32100, now)
		require.NoError(t, err)
		assert.Equal(t, int64(32100), d)
	})

	t.Run("deterministic for fixed inputs", func(t *testing.T) {
		d1, err1 := save10.Discount(450000, now)
		d2, err2 := save10.Discount(450000, now)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, d1, d2)
	})
}
