package model

import "time"

// QuotationStatus is the state of a customer's quote request.
type QuotationStatus string

const (
	QuotationPending  QuotationStatus = "PENDING"
	QuotationAccepted QuotationStatus = "ACCEPTED"
	QuotationRejected QuotationStatus = "REJECTED"
)

// Quotation is a provider's price estimate for a saved customization.
type Quotation struct {
	ID                  uint64          // quotations.id
	UserID              uint64          // quotations.user_id
	CustomizationID     uint64          // quotations.customization_id
	ProviderID          *uint64         // quotations.provider_id (nullable until claimed)
	EstimatedPricePaise *int64          // quotations.estimated_price_paise (nullable until priced)
	Status              QuotationStatus // quotations.status
	CreatedAt           time.Time       // quotations.created_at
	UpdatedAt           time.Time       // quotations.updated_at
}

// BookingStatus is the state of a scheduled service appointment.
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// IsValid reports whether the status is a recognised booking state.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking may move from s to next.
// COMPLETED and CANCELLED are terminal; cancellation is allowed from any
// non-terminal state.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingInProgress || next == BookingCancelled
	case BookingInProgress:
		return next == BookingCompleted || next == BookingCancelled
	}
	return false
}

// Booking schedules an accepted quotation with a service provider.
type Booking struct {
	ID            uint64        // bookings.id
	UserID        uint64        // bookings.user_id
	ProviderID    uint64        // bookings.provider_id
	QuotationID   uint64        // bookings.quotation_id
	ScheduledDate time.Time     // bookings.scheduled_date
	Status        BookingStatus // bookings.status
	CreatedAt     time.Time     // bookings.created_at
	UpdatedAt     time.Time     // bookings.updated_at
}
