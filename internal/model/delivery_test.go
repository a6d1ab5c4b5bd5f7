package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func otpOrder(code string, attempts uint32, expiresIn time.Duration, now time.Time) *Order {
	exp := now.Add(expiresIn)
	return &Order{
		Status:       OrderOutForDelivery,
		DeliveryOTP:  &code,
		OTPExpiresAt: &exp,
		OTPAttempts:  attempts,
	}
}

func TestEvaluateDeliveryOTP(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("match", func(t *testing.T) {
		o := otpOrder("042137", 0, 10*time.Minute, now)
		assert.Equal(t, OTPMatch, EvaluateDeliveryOTP(o, "042137", now))
	})

	t.Run("mismatch", func(t *testing.T) {
		o := otpOrder("042137", 0, 10*time.Minute, now)
		assert.Equal(t, OTPMismatch, EvaluateDeliveryOTP(o, "999999", now))
	})

	t.Run("not issued", func(t *testing.T) {
		assert.Equal(t, OTPNotIssued, EvaluateDeliveryOTP(&Order{Status: OrderShipped}, "042137", now))
		empty := ""
		assert.Equal(t, OTPNotIssued, EvaluateDeliveryOTP(&Order{DeliveryOTP: &empty}, "", now))
	})

	t.Run("expired code never matches", func(t *testing.T) {
		o := otpOrder("042137", 0, -time.Second, now)
		assert.Equal(t, OTPExpired, EvaluateDeliveryOTP(o, "042137", now))
	})

	t.Run("exact expiry instant still valid", func(t *testing.T) {
		o := otpOrder("042137", 0, 0, now)
		assert.Equal(t, OTPMatch, EvaluateDeliveryOTP(o, "042137", now))
	})

	t.Run("exhausted after max attempts even with right code", func(t *testing.T) {
		o := otpOrder("042137", MaxOTPAttempts, 10*time.Minute, now)
		assert.Equal(t, OTPExhausted, EvaluateDeliveryOTP(o, "042137", now))
	})

	t.Run("attempt below cap still evaluated", func(t *testing.T) {
		o := otpOrder("042137", MaxOTPAttempts-1, 10*time.Minute, now)
		assert.Equal(t, OTPMatch, EvaluateDeliveryOTP(o, "042137", now))
	})

	t.Run("exhausted checked before expiry", func(t *testing.T) {
		o := otpOrder("042137", MaxOTPAttempts, -time.Minute, now)
		assert.Equal(t, OTPExhausted, EvaluateDeliveryOTP(o, "042137", now))
	})
}
