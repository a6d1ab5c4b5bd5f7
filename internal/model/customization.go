package model

import (
	"encoding/json"
	"time"
)

// Customization is a customer's saved configuration of parts and colours
// applied to a base car. Configuration is an opaque JSON blob owned by
// the frontend visualiser; the backend only stores and returns it.
// PreviewToken is a UUID used to share read-only previews.
type Customization struct {
	ID            uint64          // customizations.id
	UserID        uint64          // customizations.user_id
	CarID         uint64          // customizations.car_id
	Name          string          // customizations.name
	Configuration json.RawMessage // customizations.configuration
	PreviewToken  string          // customizations.preview_token
	CreatedAt     time.Time       // customizations.created_at
}

// Invoice is the billing document generated on demand for an order.
// Amounts are copied from the order at generation time.
type Invoice struct {
	ID            uint64    // invoices.id
	OrderID       uint64    // invoices.order_id
	Number        string    // invoices.number
	SubtotalPaise int64     // invoices.subtotal_paise
	DiscountPaise int64     // invoices.discount_paise
	TotalPaise    int64     // invoices.total_paise
	IssuedAt      time.Time // invoices.issued_at
}

// AuditLog records an admin mutation for traceability.
type AuditLog struct {
	ID        uint64    // audit_logs.id
	ActorID   uint64    // audit_logs.actor_id
	Action    string    // audit_logs.action
	Entity    string    // audit_logs.entity
	EntityID  uint64    // audit_logs.entity_id
	Detail    string    // audit_logs.detail
	CreatedAt time.Time // audit_logs.created_at
}
