package statemachine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"supply-order-service/models"
	"supply-order-service/statemachine"
)

func TestValidate_LegalTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.OrderStatus
		to   models.OrderStatus
		role models.Role
	}{
		{"wholesaler confirms pending", models.StatusPending, models.StatusConfirmed, models.RoleWholesaler},
		{"wholesaler cancels pending", models.StatusPending, models.StatusCancelled, models.RoleWholesaler},
		{"wholesaler cancels confirmed", models.StatusConfirmed, models.StatusCancelled, models.RoleWholesaler},
		{"wholesaler certifies delivered", models.StatusDelivered, models.StatusCertified, models.RoleWholesaler},
		{"wholesaler requests return", models.StatusDelivered, models.StatusReturnRequested, models.RoleWholesaler},
		{"wholesaler withdraws return request", models.StatusReturnRequested, models.StatusCancelled, models.RoleWholesaler},
		{"supplier confirms pending", models.StatusPending, models.StatusConfirmed, models.RoleSupplier},
		{"supplier starts production", models.StatusConfirmed, models.StatusInProduction, models.RoleSupplier},
		{"supplier finishes production", models.StatusInProduction, models.StatusReadyForDelivery, models.RoleSupplier},
		{"supplier assigns transporter", models.StatusReadyForDelivery, models.StatusAssignedToTransporter, models.RoleSupplier},
		{"supplier ships directly", models.StatusReadyForDelivery, models.StatusShipped, models.RoleSupplier},
		{"supplier delivers own shipment", models.StatusShipped, models.StatusDelivered, models.RoleSupplier},
		{"transporter accepts assignment", models.StatusAssignedToTransporter, models.StatusAcceptedByTransporter, models.RoleTransporter},
		{"transporter starts transit", models.StatusAcceptedByTransporter, models.StatusInTransit, models.RoleTransporter},
		{"transporter delivers", models.StatusInTransit, models.StatusDelivered, models.RoleTransporter},
		{"transporter starts return transit", models.StatusReturnAccepted, models.StatusReturnInTransit, models.RoleTransporter},
		{"transporter completes return", models.StatusReturnInTransit, models.StatusReturnedToSupplier, models.RoleTransporter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, statemachine.Validate(tc.from, tc.to, tc.role))
		})
	}
}

func TestValidate_DeniedTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.OrderStatus
		to   models.OrderStatus
		role models.Role
	}{
		{"wholesaler cannot rewind delivered", models.StatusDelivered, models.StatusPending, models.RoleWholesaler},
		{"wholesaler cannot start production", models.StatusConfirmed, models.StatusInProduction, models.RoleWholesaler},
		{"wholesaler cannot cancel in_production", models.StatusInProduction, models.StatusCancelled, models.RoleWholesaler},
		{"supplier cannot certify", models.StatusDelivered, models.StatusCertified, models.RoleSupplier},
		{"supplier cannot skip production", models.StatusConfirmed, models.StatusReadyForDelivery, models.RoleSupplier},
		{"transporter cannot confirm", models.StatusPending, models.StatusConfirmed, models.RoleTransporter},
		{"transporter cannot skip transit", models.StatusAcceptedByTransporter, models.StatusDelivered, models.RoleTransporter},
		{"no exit from cancelled", models.StatusCancelled, models.StatusPending, models.RoleWholesaler},
		{"no exit from certified", models.StatusCertified, models.StatusReturnRequested, models.RoleWholesaler},
		{"no exit from returned_to_supplier", models.StatusReturnedToSupplier, models.StatusCancelled, models.RoleTransporter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := statemachine.Validate(tc.from, tc.to, tc.role)
			var denied *statemachine.TransitionDeniedError
			assert.ErrorAs(t, err, &denied)
			assert.Contains(t, err.Error(), string(tc.from))
			assert.Contains(t, err.Error(), string(tc.to))
			assert.Contains(t, err.Error(), string(tc.role))
		})
	}
}

func TestValidate_UnknownStatus(t *testing.T) {
	err := statemachine.Validate(models.StatusPending, "teleported", models.RoleWholesaler)
	assert.True(t, errors.Is(err, statemachine.ErrUnknownStatus))
	assert.Contains(t, err.Error(), "teleported")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, statemachine.IsTerminal(models.StatusCancelled))
	assert.True(t, statemachine.IsTerminal(models.StatusCertified))
	assert.True(t, statemachine.IsTerminal(models.StatusReturnedToSupplier))
	assert.False(t, statemachine.IsTerminal(models.StatusPending))
	assert.False(t, statemachine.IsTerminal(models.StatusDelivered))
	assert.False(t, statemachine.IsTerminal(models.StatusReturnInTransit))
}

func TestRestoresStock(t *testing.T) {
	assert.True(t, statemachine.RestoresStock(models.StatusPending, models.StatusCancelled))
	assert.True(t, statemachine.RestoresStock(models.StatusConfirmed, models.StatusCancelled))

	// Goods are already committed past confirmation; no restore.
	assert.False(t, statemachine.RestoresStock(models.StatusInProduction, models.StatusCancelled))
	assert.False(t, statemachine.RestoresStock(models.StatusInTransit, models.StatusCancelled))
	assert.False(t, statemachine.RestoresStock(models.StatusReturnRequested, models.StatusCancelled))
	// The return path never touches the ledger.
	assert.False(t, statemachine.RestoresStock(models.StatusReturnInTransit, models.StatusReturnedToSupplier))
	assert.False(t, statemachine.RestoresStock(models.StatusPending, models.StatusConfirmed))
}

func TestTimestampField(t *testing.T) {
	assert.Equal(t, "confirmed_at", statemachine.TimestampField(models.StatusConfirmed))
	assert.Equal(t, "cancelled_at", statemachine.TimestampField(models.StatusCancelled))
	assert.Equal(t, "transporter_assigned_at", statemachine.TimestampField(models.StatusAssignedToTransporter))
	assert.Equal(t, "returned_to_supplier_at", statemachine.TimestampField(models.StatusReturnedToSupplier))
	assert.Equal(t, "", statemachine.TimestampField(models.StatusPending))
}

func TestAssignsTransporter(t *testing.T) {
	assert.True(t, statemachine.AssignsTransporter(models.StatusAssignedToTransporter))
	assert.False(t, statemachine.AssignsTransporter(models.StatusAcceptedByTransporter))
}
