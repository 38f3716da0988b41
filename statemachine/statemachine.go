// Package statemachine owns the one role-scoped transition table for
// the order lifecycle. Every controller consults this table; none
// carries a partial copy of its own.
package statemachine

import (
	"errors"
	"fmt"

	"supply-order-service/models"
)

// ErrUnknownStatus rejects a requested status outside the closed set.
var ErrUnknownStatus = errors.New("unknown order status")

// TransitionDeniedError reports an illegal transition attempt. The
// message names the offending pair and the acting role.
type TransitionDeniedError struct {
	From models.OrderStatus
	To   models.OrderStatus
	Role models.Role
}

func (e *TransitionDeniedError) Error() string {
	return fmt.Sprintf("transition denied: %s may not move order from %s to %s", e.Role, e.From, e.To)
}

var knownStatuses = map[models.OrderStatus]struct{}{
	models.StatusPending:               {},
	models.StatusConfirmed:             {},
	models.StatusInProduction:          {},
	models.StatusReadyForDelivery:      {},
	models.StatusAssignedToTransporter: {},
	models.StatusAcceptedByTransporter: {},
	models.StatusShipped:               {},
	models.StatusInTransit:             {},
	models.StatusDelivered:             {},
	models.StatusCancelled:             {},
	models.StatusCertified:             {},
	models.StatusReturnRequested:       {},
	models.StatusReturnAccepted:        {},
	models.StatusReturnInTransit:       {},
	models.StatusReturnedToSupplier:    {},
}

// transitions maps role -> current status -> legal next statuses.
// "shipped" is the supplier self-delivery shortcut out of
// ready_for_delivery that skips transporter assignment.
var transitions = map[models.Role]map[models.OrderStatus][]models.OrderStatus{
	models.RoleWholesaler: {
		models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
		models.StatusConfirmed: {models.StatusCancelled},
		models.StatusDelivered: {models.StatusCertified, models.StatusReturnRequested},
		// A return request not yet claimed can still be withdrawn.
		models.StatusReturnRequested: {models.StatusCancelled},
	},
	models.RoleSupplier: {
		models.StatusPending:          {models.StatusConfirmed, models.StatusCancelled},
		models.StatusConfirmed:        {models.StatusInProduction, models.StatusCancelled},
		models.StatusInProduction:     {models.StatusReadyForDelivery, models.StatusCancelled},
		models.StatusReadyForDelivery: {models.StatusAssignedToTransporter, models.StatusShipped, models.StatusCancelled},
		models.StatusShipped:          {models.StatusDelivered, models.StatusCancelled},
	},
	models.RoleTransporter: {
		models.StatusAssignedToTransporter: {models.StatusAcceptedByTransporter, models.StatusCancelled},
		models.StatusAcceptedByTransporter: {models.StatusInTransit, models.StatusCancelled},
		models.StatusInTransit:             {models.StatusDelivered, models.StatusCancelled},
		// Claiming return_requested goes through the claim path; an
		// unclaimed request can only be withdrawn by the wholesaler.
		models.StatusReturnRequested: {models.StatusReturnAccepted},
		models.StatusReturnAccepted:  {models.StatusReturnInTransit, models.StatusCancelled},
		models.StatusReturnInTransit: {models.StatusReturnedToSupplier, models.StatusCancelled},
	},
}

// timestampFields maps each entered status to the bson field stamped
// the first time that status is reached.
var timestampFields = map[models.OrderStatus]string{
	models.StatusConfirmed:             "confirmed_at",
	models.StatusInProduction:          "in_production_at",
	models.StatusReadyForDelivery:      "ready_for_delivery_at",
	models.StatusAssignedToTransporter: "transporter_assigned_at",
	models.StatusAcceptedByTransporter: "accepted_by_transporter_at",
	models.StatusShipped:               "shipped_at",
	models.StatusInTransit:             "in_transit_at",
	models.StatusDelivered:             "delivered_at",
	models.StatusCancelled:             "cancelled_at",
	models.StatusCertified:             "certified_at",
	models.StatusReturnRequested:       "return_requested_at",
	models.StatusReturnAccepted:        "return_accepted_at",
	models.StatusReturnInTransit:       "return_in_transit_at",
	models.StatusReturnedToSupplier:    "returned_to_supplier_at",
}

// Known reports whether s belongs to the closed status set.
func Known(s models.OrderStatus) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminal reports whether a status has no outgoing transitions for
// any role.
func IsTerminal(s models.OrderStatus) bool {
	switch s {
	case models.StatusCancelled, models.StatusCertified, models.StatusReturnedToSupplier:
		return true
	}
	return false
}

// Validate decides whether role may move an order from current to
// requested. It returns ErrUnknownStatus for statuses outside the
// closed set and *TransitionDeniedError for everything else illegal.
func Validate(current, requested models.OrderStatus, role models.Role) error {
	if !Known(requested) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, requested)
	}
	if IsTerminal(current) {
		return &TransitionDeniedError{From: current, To: requested, Role: role}
	}
	for _, next := range transitions[role][current] {
		if next == requested {
			return nil
		}
	}
	return &TransitionDeniedError{From: current, To: requested, Role: role}
}

// RestoresStock reports whether the transition compensates reserved
// stock. Only cancellation before production commits goods qualifies;
// cancelling later leaves the ledger alone, as does the whole return
// path (returned goods are inspected before they become sellable).
func RestoresStock(from, to models.OrderStatus) bool {
	if to != models.StatusCancelled {
		return false
	}
	return from == models.StatusPending || from == models.StatusConfirmed
}

// TimestampField returns the bson field stamped on entering status,
// or "" when the status carries no timestamp.
func TimestampField(s models.OrderStatus) string {
	return timestampFields[s]
}

// AssignsTransporter reports whether entering the status records a
// delivery transporter on the order.
func AssignsTransporter(s models.OrderStatus) bool {
	return s == models.StatusAssignedToTransporter
}

// ReturnLeg reports whether the status belongs to the return
// sub-workflow. Orders in these states are driven only by the return
// transporter, never the delivery one.
func ReturnLeg(s models.OrderStatus) bool {
	switch s {
	case models.StatusReturnRequested, models.StatusReturnAccepted,
		models.StatusReturnInTransit, models.StatusReturnedToSupplier:
		return true
	}
	return false
}
