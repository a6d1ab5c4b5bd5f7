package model

import "time"

// OrderStatus is the lifecycle state of an order. The happy path runs
// PENDING → PROCESSING → SHIPPED → OUT_FOR_DELIVERY → DELIVERED;
// CANCELLED is absorbing and only reachable before shipping.
type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderProcessing     OrderStatus = "PROCESSING"
	OrderShipped        OrderStatus = "SHIPPED"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// IsValid reports whether the status is a recognised order state.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal
// transition. Self-transitions are never legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderProcessing || next == OrderCancelled
	case OrderProcessing:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderOutForDelivery || next == OrderCancelled
	case OrderOutForDelivery:
		return next == OrderDelivered
	}
	return false
}

// Order records a customer's purchase of one or more parts.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – customer who placed the order.
//  Status          – current lifecycle state.
//  SubtotalPaise   – sum of item price × quantity before discount.
//  DiscountPaise   – coupon discount applied at creation time.
//  TotalPaise      – SubtotalPaise − DiscountPaise; never negative.
//  CouponCode      – code consumed for the discount, if any.
//  ShippingAddress – destination address snapshot.
//  DeliveryUserID  – assigned delivery agent, if any.
//  DeliveryOTP     – active six-digit handoff code, nil outside delivery.
//  OTPExpiresAt    – when the active code stops being accepted.
//  OTPAttempts     – failed verification attempts against the active code.
type Order struct {
	ID              uint64      // orders.id
	UserID          uint64      // orders.user_id
	Status          OrderStatus // orders.status
	SubtotalPaise   int64       // orders.subtotal_paise
	DiscountPaise   int64       // orders.discount_paise
	TotalPaise      int64       // orders.total_paise
	CouponCode      *string     // orders.coupon_code (nullable)
	ShippingAddress string      // orders.shipping_address
	DeliveryUserID  *uint64     // orders.delivery_user_id (nullable)
	DeliveryOTP     *string     // orders.delivery_otp (nullable)
	OTPExpiresAt    *time.Time  // orders.otp_expires_at (nullable)
	OTPAttempts     uint32      // orders.otp_attempts
	CreatedAt       time.Time   // orders.created_at
	UpdatedAt       time.Time   // orders.updated_at
}

// OrderItem is a line of an order. PricePaise is the part's unit price
// snapshotted at purchase time; later part price changes never alter it.
type OrderItem struct {
	ID         uint64    // order_items.id
	OrderID    uint64    // order_items.order_id
	PartID     uint64    // order_items.part_id
	Quantity   uint32    // order_items.quantity
	PricePaise int64     // order_items.price_paise
	CreatedAt  time.Time // order_items.created_at
}

// ItemsSubtotal returns the sum of price × quantity across the given items.
func ItemsSubtotal(items []OrderItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.PricePaise * int64(it.Quantity)
	}
	return sum
}

// StockReturns aggregates the per-part quantities a cancellation returns
// to stock.
func StockReturns(items []OrderItem) map[uint64]uint32 {
	out := make(map[uint64]uint32, len(items))
	for _, it := range items {
		out[it.PartID] += it.Quantity
	}
	return out
}

// OrderTotal applies a discount to a subtotal, clamping at zero so that a
// discount can never drive the total negative.
func OrderTotal(subtotal, discount int64) int64 {
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}
