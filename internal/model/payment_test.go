package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusCanTransitionTo(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentCompleted))
	assert.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	// settled payments never move again
	assert.False(t, PaymentCompleted.CanTransitionTo(PaymentFailed))
	assert.False(t, PaymentCompleted.CanTransitionTo(PaymentPending))
	assert.False(t, PaymentFailed.CanTransitionTo(PaymentCompleted))
	assert.False(t, PaymentPending.CanTransitionTo(PaymentPending))
}

func TestComplaintStatusCanTransitionTo(t *testing.T) {
	assert.True(t, ComplaintOpen.CanTransitionTo(ComplaintInProgress))
	assert.True(t, ComplaintOpen.CanTransitionTo(ComplaintResolved))
	assert.True(t, ComplaintInProgress.CanTransitionTo(ComplaintResolved))
	assert.False(t, ComplaintInProgress.CanTransitionTo(ComplaintOpen))
	assert.False(t, ComplaintResolved.CanTransitionTo(ComplaintInProgress))
}
