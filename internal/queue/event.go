// Package queue defines message payloads exchanged over the message broker.
package queue

import "encoding/json"

// Event kinds published on the carvo.events queue.
const (
	KindOrderPlaced    = "order.placed"
	KindOrderDelivered = "order.delivered"
	KindDeliveryOTP    = "delivery.otp"
	KindAuthOTP        = "auth.otp"
	KindAuthReset      = "auth.reset"
)

// Envelope wraps every published message so the consumer can dispatch on
// Kind without guessing at the payload shape.
type Envelope struct {
	Kind       string          `json:"kind"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderEvent is published when an order is placed or delivered. It
// carries enough for downstream consumers to notify and log without
// querying the primary database.
type OrderEvent struct {
	OrderID    uint64 `json:"order_id"`
	UserID     uint64 `json:"user_id"`
	TotalPaise int64  `json:"total_paise"`
	Status     string `json:"status"`
}

// DeliveryOTPEvent carries a freshly generated handoff code for
// out-of-band dispatch to the customer (SMS/email gateway downstream).
type DeliveryOTPEvent struct {
	OrderID    uint64 `json:"order_id"`
	CustomerID uint64 `json:"customer_id"`
	Code       string `json:"code"`
	ExpiresAt  string `json:"expires_at"`
}

// AuthCodeEvent carries a signup OTP or a password reset token for
// out-of-band delivery to the given email address.
type AuthCodeEvent struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
