package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusConfirmed, OrderStatusShipped},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusDelivered, OrderStatusReturned},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusPending},
		{OrderStatusDelivered, OrderStatusShipped},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusConfirmed},
		{OrderStatusReturned, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusPending},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusConfirmed.Cancellable())
	assert.True(t, OrderStatusProcessing.Cancellable())

	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusDelivered.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())
	assert.False(t, OrderStatusReturned.Cancellable())
}

func TestTerminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.True(t, OrderStatusReturned.Terminal())

	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
	assert.False(t, OrderStatusDelivered.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("  Shipped ")
	require.True(t, ok)
	assert.Equal(t, OrderStatusShipped, st)

	_, ok = ParseOrderStatus("teleported")
	assert.False(t, ok)

	_, ok = ParseOrderStatus("")
	assert.False(t, ok)
}

func TestNewTimelineEntry(t *testing.T) {
	entry := NewTimelineEntry(OrderStatusConfirmed, "payment received", "admin")

	assert.Equal(t, OrderStatusConfirmed, entry.Status)
	assert.Equal(t, "payment received", entry.Message)
	assert.Equal(t, "admin", entry.Actor)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber()

	require.True(t, strings.HasPrefix(n, "VL-"), n)
	parts := strings.Split(n, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 8)

	// the random suffix makes consecutive numbers distinct
	assert.NotEqual(t, n, NewOrderNumber())
}
