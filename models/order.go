package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one product entry on an order. Quantity and unit price
// are frozen at creation time; later product price changes do not
// touch existing orders.
type LineItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	LineTotal float64            `bson:"line_total" json:"line_total"`
}

// ShippingAddress is the delivery destination. FullAddress is derived
// from the other parts and never accepted from the client.
type ShippingAddress struct {
	Street      string `bson:"street" json:"street"`
	City        string `bson:"city" json:"city"`
	State       string `bson:"state" json:"state"`
	PostalCode  string `bson:"postal_code" json:"postal_code"`
	Country     string `bson:"country" json:"country"`
	FullAddress string `bson:"full_address" json:"full_address"`
}

// ComposeFullAddress joins the non-empty address parts. Called on
// every mutation of the address instead of relying on persistence
// hooks, so the derivation stays testable on its own.
func (a *ShippingAddress) ComposeFullAddress() {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.PostalCode, a.Country} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	a.FullAddress = strings.Join(parts, ", ")
}

// StatusEvent is one entry in the order's append-only status history.
// It drives both the audit trail and timeline views.
type StatusEvent struct {
	Timestamp  time.Time   `bson:"timestamp" json:"timestamp"`
	FromStatus OrderStatus `bson:"from_status" json:"from_status"`
	ToStatus   OrderStatus `bson:"to_status" json:"to_status"`
	ActorRole  Role        `bson:"actor_role" json:"actor_role"`
	Reason     string      `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Order is the aggregate root for one wholesaler purchase order
// against a supplier.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber string             `bson:"order_number" json:"order_number"`

	WholesalerID  primitive.ObjectID  `bson:"wholesaler_id" json:"wholesaler_id"`
	SupplierID    primitive.ObjectID  `bson:"supplier_id" json:"supplier_id"`
	TransporterID *primitive.ObjectID `bson:"transporter_id,omitempty" json:"transporter_id,omitempty"`
	// ReturnTransporterID is set by the first successful return claim.
	ReturnTransporterID *primitive.ObjectID `bson:"return_transporter_id,omitempty" json:"return_transporter_id,omitempty"`

	Items []LineItem `bson:"items" json:"items"`

	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
	Discount    float64 `bson:"discount" json:"discount"`
	TaxAmount   float64 `bson:"tax_amount" json:"tax_amount"`
	FinalAmount float64 `bson:"final_amount" json:"final_amount"`

	ShippingAddress ShippingAddress `bson:"shipping_address" json:"shipping_address"`

	Status        OrderStatus   `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`

	// Notes is the human-readable log; each entry is prefixed with its
	// timestamp. The structured history lives in Events.
	Notes  []string      `bson:"notes" json:"notes"`
	Events []StatusEvent `bson:"events" json:"events"`

	ConfirmedAt             *time.Time `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	InProductionAt          *time.Time `bson:"in_production_at,omitempty" json:"in_production_at,omitempty"`
	ReadyForDeliveryAt      *time.Time `bson:"ready_for_delivery_at,omitempty" json:"ready_for_delivery_at,omitempty"`
	TransporterAssignedAt   *time.Time `bson:"transporter_assigned_at,omitempty" json:"transporter_assigned_at,omitempty"`
	AcceptedByTransporterAt *time.Time `bson:"accepted_by_transporter_at,omitempty" json:"accepted_by_transporter_at,omitempty"`
	ShippedAt               *time.Time `bson:"shipped_at,omitempty" json:"shipped_at,omitempty"`
	InTransitAt             *time.Time `bson:"in_transit_at,omitempty" json:"in_transit_at,omitempty"`
	DeliveredAt             *time.Time `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	CancelledAt             *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CertifiedAt             *time.Time `bson:"certified_at,omitempty" json:"certified_at,omitempty"`
	ReturnRequestedAt       *time.Time `bson:"return_requested_at,omitempty" json:"return_requested_at,omitempty"`
	ReturnAcceptedAt        *time.Time `bson:"return_accepted_at,omitempty" json:"return_accepted_at,omitempty"`
	ReturnInTransitAt       *time.Time `bson:"return_in_transit_at,omitempty" json:"return_in_transit_at,omitempty"`
	ReturnedToSupplierAt    *time.Time `bson:"returned_to_supplier_at,omitempty" json:"returned_to_supplier_at,omitempty"`

	// Version guards every status commit: a writer that read a stale
	// document loses the compare-and-swap and must retry.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewOrderNumber builds a unique, human-scannable order reference.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("WO-%d-%s", time.Now().UnixMilli(), suffix)
}

// ComputeAmounts recomputes the line totals and the derived amount
// fields from the items, discount and tax. Inputs changed -> call it.
func (o *Order) ComputeAmounts() {
	var total float64
	for i := range o.Items {
		o.Items[i].LineTotal = float64(o.Items[i].Quantity) * o.Items[i].UnitPrice
		total += o.Items[i].LineTotal
	}
	o.TotalAmount = total
	o.FinalAmount = total - o.Discount + o.TaxAmount
}

// FormatNote prefixes a free-text reason with a timestamp, matching
// the entries kept in Notes.
func FormatNote(at time.Time, text string) string {
	return fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), text)
}

// CreateOrderRequest is the wholesaler payload for placing an order.
type CreateOrderRequest struct {
	SupplierID string `json:"supplier_id" binding:"required,objectid"`
	Items []struct {
		ProductID string `json:"product_id" binding:"required,objectid"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1,dive"`
	ShippingAddress struct {
		Street     string `json:"street" binding:"required"`
		City       string `json:"city" binding:"required"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code" binding:"required"`
		Country    string `json:"country" binding:"required"`
	} `json:"shipping_address" binding:"required"`
	Discount  float64 `json:"discount" binding:"gte=0"`
	TaxAmount float64 `json:"tax_amount" binding:"gte=0"`
}

// UpdateStatusRequest asks the state machine for one transition.
// TransporterID is only consulted when the target status assigns one.
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	Reason        string `json:"reason"`
	TransporterID string `json:"transporter_id"`
}

// UpdatePaymentRequest flips the payment status, independent of the
// lifecycle state machine.
type UpdatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=pending paid failed refunded"`
}

// OrderEventMessage is what the producer publishes on every accepted
// transition and on order creation.
type OrderEventMessage struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	FromStatus  OrderStatus `json:"from_status,omitempty"`
	ToStatus    OrderStatus `json:"to_status"`
	ActorRole   Role        `json:"actor_role"`
	Reason      string      `json:"reason,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}
