package model

import "time"

// Notification types emitted by state changes around the platform.
const (
	NotifyOrderPlaced     = "ORDER_PLACED"
	NotifyOrderStatus     = "ORDER_STATUS"
	NotifyDeliveryStarted = "DELIVERY_STARTED"
	NotifyOrderDelivered  = "ORDER_DELIVERED"
	NotifyPayment         = "PAYMENT"
	NotifyBooking         = "BOOKING"
	NotifyQuotation       = "QUOTATION"
	NotifyComplaint       = "COMPLAINT"
)

// Notification is a per-user feed entry. Clients poll; there is no push
// channel and no delivery guarantee beyond "present on the next fetch".
type Notification struct {
	ID              uint64    // notifications.id
	UserID          uint64    // notifications.user_id
	Type            string    // notifications.type
	Title           string    // notifications.title
	Message         string    // notifications.message
	IsRead          bool      // notifications.is_read
	RelatedEntityID *uint64   // notifications.related_entity_id (nullable)
	CreatedAt       time.Time // notifications.created_at
}
