package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartSubtotal(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{UnitPrice: 10, Quantity: 2},
		{UnitPrice: 25, Quantity: 1},
	}}

	assert.InDelta(t, 45.0, cart.Subtotal(), 1e-9)
	assert.Equal(t, 0.0, Cart{}.Subtotal())
}
