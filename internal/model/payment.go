package model

import "time"

// Payment methods and statuses. A payment references exactly one of an
// order or a booking; the repository enforces the exclusivity since MySQL
// has no check constraint spanning the two foreign keys.
const (
	PaymentMethodUPI = "UPI"
	PaymentMethodCOD = "COD"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// CanTransitionTo reports whether a payment may move from s to next.
// COMPLETED and FAILED are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentPending && (next == PaymentCompleted || next == PaymentFailed)
}

// Payment records a payment attempt against an order or booking.
//
// Fields:
//  ID            – primary key identifier.
//  OrderID       – order being paid for (nil for booking payments).
//  BookingID     – booking being paid for (nil for order payments).
//  AmountPaise   – amount in paise, derived server-side from the target.
//  Method        – UPI or COD.
//  Status        – PENDING until confirmed or failed.
//  TransactionID – client-reported UPI transaction reference (nullable).
//  Reference     – server-generated UUID identifying this payment externally.
type Payment struct {
	ID            uint64        // payments.id
	OrderID       *uint64       // payments.order_id (nullable)
	BookingID     *uint64       // payments.booking_id (nullable)
	AmountPaise   int64         // payments.amount_paise
	Method        string        // payments.method
	Status        PaymentStatus // payments.status
	TransactionID *string       // payments.transaction_id (nullable)
	Reference     string        // payments.reference
	CreatedAt     time.Time     // payments.created_at
	UpdatedAt     time.Time     // payments.updated_at
}
