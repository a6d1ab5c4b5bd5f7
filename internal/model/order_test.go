package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to processing", OrderPending, OrderProcessing, true},
		{"pending to cancelled", OrderPending, OrderCancelled, true},
		{"pending skips to shipped", OrderPending, OrderShipped, false},
		{"pending skips to delivered", OrderPending, OrderDelivered, false},
		{"processing to shipped", OrderProcessing, OrderShipped, true},
		{"processing to cancelled", OrderProcessing, OrderCancelled, true},
		{"processing back to pending", OrderProcessing, OrderPending, false},
		{"shipped to out for delivery", OrderShipped, OrderOutForDelivery, true},
		{"shipped to cancelled", OrderShipped, OrderCancelled, true},
		{"shipped straight to delivered", OrderShipped, OrderDelivered, false},
		{"out for delivery to delivered", OrderOutForDelivery, OrderDelivered, true},
		{"out for delivery cannot cancel", OrderOutForDelivery, OrderCancelled, false},
		{"delivered is terminal", OrderDelivered, OrderCancelled, false},
		{"cancelled is terminal", OrderCancelled, OrderPending, false},
		{"no self transition", OrderPending, OrderPending, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, OrderDelivered.IsTerminal())
	assert.True(t, OrderCancelled.IsTerminal())
	assert.False(t, OrderPending.IsTerminal())
	assert.False(t, OrderOutForDelivery.IsTerminal())
}

func TestOrderStatusIsValid(t *testing.T) {
	assert.True(t, OrderOutForDelivery.IsValid())
	assert.False(t, OrderStatus("SHIPPING").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestItemsSubtotal(t *testing.T) {
	items := []OrderItem{
		{PricePaise: 150000, Quantity: 2},
		{PricePaise: 9999, Quantity: 1},
	}
	assert.Equal(t, int64(309999), ItemsSubtotal(items))
	assert.Equal(t, int64(0), ItemsSubtotal(nil))
}

func TestStockReturns(t *testing.T) {
	items := []OrderItem{
		{PartID: 3, Quantity: 2},
		{PartID: 8, Quantity: 1},
		{PartID: 3, Quantity: 4},
	}
	// quantities for the same part aggregate into one adjustment
	assert.Equal(t, map[uint64]uint32{3: 6, 8: 1}, StockReturns(items))
	assert.Empty(t, StockReturns(nil))
}

func TestOrderTotal(t *testing.T) {
	assert.Equal(t, int64(40500), OrderTotal(45000, 4500))
	assert.Equal(t, int64(0), OrderTotal(1000, 1000))
	// discount can never push the total negative
	assert.Equal(t, int64(0), OrderTotal(1000, 2000))
}
