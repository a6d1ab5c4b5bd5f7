package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, 2, 7, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "CRV-2026-000042", InvoiceNumber(42, issued))
	assert.Equal(t, "CRV-2026-123456", InvoiceNumber(123456, issued))
	// year comes from UTC even for zoned inputs
	ist := time.FixedZone("IST", 5*3600+1800)
	newYear := time.Date(2027, 1, 1, 2, 0, 0, 0, ist) // still 2026 in UTC
	assert.Equal(t, "CRV-2026-000001", InvoiceNumber(1, newYear))
}

func TestInvoiceNumberStable(t *testing.T) {
	issued := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, InvoiceNumber(7, issued), InvoiceNumber(7, issued.AddDate(0, 3, 0)))
}
