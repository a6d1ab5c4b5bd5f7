package model

import "time"

// MaxOTPAttempts caps failed verifications against one delivery code.
// Once reached the agent must restart the delivery to obtain a new code.
const MaxOTPAttempts = 5

// OTPResult is the outcome of checking a supplied handoff code against
// the state stored on an order.
type OTPResult int

const (
	// OTPMatch: the code is correct and the order may move to DELIVERED.
	OTPMatch OTPResult = iota
	// OTPMismatch: wrong code; the order state is left unchanged apart
	// from the attempt counter.
	OTPMismatch
	// OTPExpired: the stored code has passed its expiry and can no longer
	// be accepted, even if it matches.
	OTPExpired
	// OTPExhausted: too many failed attempts; the code is burned.
	OTPExhausted
	// OTPNotIssued: the order has no active code (delivery not started).
	OTPNotIssued
)

// EvaluateDeliveryOTP decides the outcome of a verification attempt. It is
// pure: the caller is responsible for persisting the attempt counter and
// any resulting status transition. The supplied code must match the stored
// one exactly; expiry and the attempt cap are checked before the
// comparison so a burned code never succeeds.
func EvaluateDeliveryOTP(o *Order, supplied string, now time.Time) OTPResult {
	if o.DeliveryOTP == nil || *o.DeliveryOTP == "" {
		return OTPNotIssued
	}
	if o.OTPAttempts >= MaxOTPAttempts {
		return OTPExhausted
	}
	if o.OTPExpiresAt != nil && now.After(*o.OTPExpiresAt) {
		return OTPExpired
	}
	if supplied != *o.DeliveryOTP {
		return OTPMismatch
	}
	return OTPMatch
}
