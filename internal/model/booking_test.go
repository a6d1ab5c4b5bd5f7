package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{"pending to confirmed", BookingPending, BookingConfirmed, true},
		{"pending to cancelled", BookingPending, BookingCancelled, true},
		{"pending skips to in progress", BookingPending, BookingInProgress, false},
		{"confirmed to in progress", BookingConfirmed, BookingInProgress, true},
		{"confirmed to cancelled", BookingConfirmed, BookingCancelled, true},
		{"in progress to completed", BookingInProgress, BookingCompleted, true},
		{"in progress to cancelled", BookingInProgress, BookingCancelled, true},
		{"completed is terminal", BookingCompleted, BookingCancelled, false},
		{"cancelled is terminal", BookingCancelled, BookingPending, false},
		{"no self transition", BookingConfirmed, BookingConfirmed, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestBookingStatusIsValid(t *testing.T) {
	assert.True(t, BookingInProgress.IsValid())
	assert.False(t, BookingStatus("DONE").IsValid())
}
