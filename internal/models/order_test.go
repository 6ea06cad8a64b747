package models_test

import (
	"testing"

	"github.com/latta-clothing/storefront/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{"Pending to Processing", models.OrderStatusPending, models.OrderStatusProcessing, true},
		{"Pending to Cancelled", models.OrderStatusPending, models.OrderStatusCancelled, true},
		{"Pending to Shipped skips Processing", models.OrderStatusPending, models.OrderStatusShipped, false},
		{"Pending to Delivered skips everything", models.OrderStatusPending, models.OrderStatusDelivered, false},
		{"Processing to Shipped", models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{"Processing to Cancelled", models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{"Processing back to Pending", models.OrderStatusProcessing, models.OrderStatusPending, false},
		{"Shipped to Delivered", models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{"Shipped to Cancelled", models.OrderStatusShipped, models.OrderStatusCancelled, false},
		{"Delivered is terminal", models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{"Cancelled is terminal", models.OrderStatusCancelled, models.OrderStatusPending, false},
		{"Self transition rejected", models.OrderStatusPending, models.OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, models.OrderStatusPending.IsTerminal())
	assert.False(t, models.OrderStatusProcessing.IsTerminal())
	assert.False(t, models.OrderStatusShipped.IsTerminal())
	assert.True(t, models.OrderStatusDelivered.IsTerminal())
	assert.True(t, models.OrderStatusCancelled.IsTerminal())
}
