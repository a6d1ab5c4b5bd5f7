package utils

import (
	"fmt"
	"time"
)

// InvoiceNumber derives a stable invoice number from the order ID and
// issue date. Regenerating an invoice for the same order in the same
// year yields the same number.
func InvoiceNumber(orderID uint64, issuedAt time.Time) string {
	return fmt.Sprintf("CRV-%d-%06d", issuedAt.UTC().Year(), orderID)
}
