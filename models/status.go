package models

// OrderStatus is the lifecycle state of a supplier order. The set is
// closed: anything else is rejected before it reaches the database.
type OrderStatus string

const (
	StatusPending               OrderStatus = "pending"
	StatusConfirmed             OrderStatus = "confirmed"
	StatusInProduction          OrderStatus = "in_production"
	StatusReadyForDelivery      OrderStatus = "ready_for_delivery"
	StatusAssignedToTransporter OrderStatus = "assigned_to_transporter"
	StatusAcceptedByTransporter OrderStatus = "accepted_by_transporter"
	StatusShipped               OrderStatus = "shipped"
	StatusInTransit             OrderStatus = "in_transit"
	StatusDelivered             OrderStatus = "delivered"
	StatusCancelled             OrderStatus = "cancelled"
	StatusCertified             OrderStatus = "certified"
	StatusReturnRequested       OrderStatus = "return_requested"
	StatusReturnAccepted        OrderStatus = "return_accepted"
	StatusReturnInTransit       OrderStatus = "return_in_transit"
	StatusReturnedToSupplier    OrderStatus = "returned_to_supplier"
)

func (s OrderStatus) String() string { return string(s) }

// PaymentStatus tracks payment independently of the order lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Role identifies which party is acting on an order. The transition
// table is scoped per role.
type Role string

const (
	RoleWholesaler  Role = "wholesaler"
	RoleSupplier    Role = "supplier"
	RoleTransporter Role = "transporter"
)

func (r Role) String() string { return string(r) }
