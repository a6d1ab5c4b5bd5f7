package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carvohq/carvo-backend/internal/model"
)

func TestConfirmGuard(t *testing.T) {
	orderID := uint64(11)
	bookingID := uint64(7)

	cases := []struct {
		name       string
		payment    model.Payment
		ownerID    uint64
		callerID   uint64
		wantStatus int
	}{
		{
			name:       "own pending upi order payment proceeds",
			payment:    model.Payment{OrderID: &orderID, Method: model.PaymentMethodUPI, Status: model.PaymentPending},
			ownerID:    42,
			callerID:   42,
			wantStatus: 0,
		},
		{
			name:       "own pending upi booking payment proceeds",
			payment:    model.Payment{BookingID: &bookingID, Method: model.PaymentMethodUPI, Status: model.PaymentPending},
			ownerID:    42,
			callerID:   42,
			wantStatus: 0,
		},
		{
			name:       "foreign booking payment is forbidden",
			payment:    model.Payment{BookingID: &bookingID, Method: model.PaymentMethodUPI, Status: model.PaymentPending},
			ownerID:    42,
			callerID:   99,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "foreign order payment is forbidden",
			payment:    model.Payment{OrderID: &orderID, Method: model.PaymentMethodUPI, Status: model.PaymentPending},
			ownerID:    42,
			callerID:   99,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "completed payment conflicts",
			payment:    model.Payment{OrderID: &orderID, Method: model.PaymentMethodUPI, Status: model.PaymentCompleted},
			ownerID:    42,
			callerID:   42,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "cod payment settles at delivery only",
			payment:    model.Payment{OrderID: &orderID, Method: model.PaymentMethodCOD, Status: model.PaymentPending},
			ownerID:    42,
			callerID:   42,
			wantStatus: http.StatusConflict,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := confirmGuard(tc.payment, tc.ownerID, tc.callerID)
			assert.Equal(t, tc.wantStatus, status)
			if tc.wantStatus == 0 {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}
