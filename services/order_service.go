package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"supply-order-service/kafka"
	"supply-order-service/models"
	"supply-order-service/repository"
	"supply-order-service/statemachine"
	"supply-order-service/stock"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// OrderListResponse is a paginated order listing.
type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

// MetaData carries pagination info.
type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// ProductCacheInvalidator drops cached product entries after stock
// writes. Satisfied by cache.ProductCache; nil disables invalidation.
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

// OrderService owns the order lifecycle: creation with stock
// reservation, role-gated status transitions, compensation, deletion,
// and the return claim.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	bulk     repository.BulkStockUpdater
	cache    ProductCacheInvalidator
	producer kafka.ProducerAPI
	logger   *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	bulk repository.BulkStockUpdater,
	productCache ProductCacheInvalidator,
	producer kafka.ProducerAPI,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		bulk:     bulk,
		cache:    productCache,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrder validates the payload, snapshots prices, reserves stock
// for every line item atomically and persists the order in pending.
// If any single item lacks stock, nothing is reserved and no order
// exists afterwards.
func (s *OrderService) CreateOrder(ctx context.Context, wholesalerID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError) {
	whID, err := primitive.ObjectIDFromHex(wholesalerID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid wholesaler ID format"}
	}
	supID, err := primitive.ObjectIDFromHex(req.SupplierID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid supplier ID format"}
	}

	now := time.Now().UTC()
	items := make([]models.LineItem, 0, len(req.Items))
	ops := make([]stock.Operation, 0, len(req.Items))

	for _, it := range req.Items {
		pid, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: "Invalid product ID format: " + it.ProductID}
		}

		p, err := s.products.FindByID(ctx, pid)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 400, Message: "Unknown product: " + it.ProductID}
		}
		if err != nil {
			s.logger.Error("failed to load product", zap.String("product_id", it.ProductID), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to create order"}
		}
		if p.SupplierID != supID {
			return nil, &ServiceError{StatusCode: 400, Message: "Product does not belong to the supplier: " + it.ProductID}
		}
		if p.MinOrderQuantity > 0 && it.Quantity < p.MinOrderQuantity {
			return nil, &ServiceError{StatusCode: 400, Message: "Quantity below minimum order quantity for product: " + it.ProductID}
		}

		// Price and name are frozen here; later product edits do not
		// touch existing orders.
		items = append(items, models.LineItem{
			ProductID: pid,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.SellingPrice,
		})
		ops = append(ops, stock.Operation{ProductID: pid, Quantity: it.Quantity, Op: stock.OpDecrease})
	}

	order := &models.Order{
		OrderNumber:  models.NewOrderNumber(),
		WholesalerID: whID,
		SupplierID:   supID,
		Items:        items,
		Discount:     req.Discount,
		TaxAmount:    req.TaxAmount,
		ShippingAddress: models.ShippingAddress{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		Events: []models.StatusEvent{{
			Timestamp: now,
			ToStatus:  models.StatusPending,
			ActorRole: models.RoleWholesaler,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.ComputeAmounts()
	order.ShippingAddress.ComposeFullAddress()

	// Reservation and order insert commit or abort together.
	err = s.bulk.Run(ctx, ops, func(txCtx context.Context) error {
		return s.orders.Create(txCtx, order)
	})
	if err != nil {
		if errors.Is(err, stock.ErrInsufficientStock) {
			return nil, &ServiceError{StatusCode: 400, Message: err.Error()}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 400, Message: "Unknown product in order"}
		}
		s.logger.Error("order creation failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create order"}
	}

	s.invalidateProducts(ctx, order.Items)
	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("wholesaler_id", wholesalerID),
		zap.Int("items", len(items)),
	)
	s.publishEvent(ctx, order, "", models.StatusPending, models.RoleWholesaler, "")

	return order, nil
}

// UpdateStatus runs one transition for a wholesaler or supplier. The
// transporter path goes through TransporterUpdateStatus because it
// must first work out which leg the caller is driving.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID string, role models.Role, orderID string, req *models.UpdateStatusRequest) (*models.Order, *ServiceError) {
	order, svcErr := s.loadOwned(ctx, actorID, role, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.transition(ctx, order, role, req)
}

// TransporterUpdateStatus drives both the delivery leg and the return
// leg. The order's current status decides which leg is in play, and
// each leg only answers to its own transporter; claiming a return goes
// through AcceptReturn, never this path.
func (s *OrderService) TransporterUpdateStatus(ctx context.Context, transporterID, orderID string, req *models.UpdateStatusRequest) (*models.Order, *ServiceError) {
	tid, err := primitive.ObjectIDFromHex(transporterID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid transporter ID format"}
	}
	order, svcErr := s.load(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	isReturn := order.ReturnTransporterID != nil && *order.ReturnTransporterID == tid
	isDelivery := order.TransporterID != nil && *order.TransporterID == tid
	if statemachine.ReturnLeg(order.Status) {
		if !isReturn {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
	} else if !isDelivery {
		return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
	}

	return s.transition(ctx, order, models.RoleTransporter, req)
}

// AcceptReturn claims a return_requested order for the calling
// transporter, first-acceptor-wins.
func (s *OrderService) AcceptReturn(ctx context.Context, transporterID, orderID string) (*models.Order, *ServiceError) {
	tid, err := primitive.ObjectIDFromHex(transporterID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid transporter ID format"}
	}
	order, svcErr := s.load(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := statemachine.Validate(order.Status, models.StatusReturnAccepted, models.RoleTransporter); err != nil {
		return nil, transitionError(err)
	}

	updated, err := s.orders.ClaimReturn(ctx, order.ID, tid, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyAssigned) {
			return nil, &ServiceError{StatusCode: 400, Message: "Return already assigned to another transporter"}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		if errors.Is(err, repository.ErrStaleOrder) {
			return nil, &ServiceError{StatusCode: 400, Message: "Order is no longer awaiting a return transporter"}
		}
		s.logger.Error("return claim failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to accept return"}
	}

	s.logger.Info("return claimed",
		zap.String("order_number", updated.OrderNumber),
		zap.String("transporter_id", transporterID),
	)
	s.publishEvent(ctx, updated, models.StatusReturnRequested, models.StatusReturnAccepted, models.RoleTransporter, "")

	return updated, nil
}

// DeleteOrder removes an order that is still pending, restoring the
// reserved stock in the same transaction as the delete.
func (s *OrderService) DeleteOrder(ctx context.Context, wholesalerID, orderID string) *ServiceError {
	order, svcErr := s.loadOwned(ctx, wholesalerID, models.RoleWholesaler, orderID)
	if svcErr != nil {
		return svcErr
	}
	if order.Status != models.StatusPending {
		return &ServiceError{StatusCode: 400, Message: "Only pending orders can be deleted"}
	}

	// The delete re-validates the status and version read above, so a
	// transition landing in between aborts the whole transaction and
	// no stock is restored for a live order.
	ops := restoreOps(order)
	err := s.bulk.Run(ctx, ops, func(txCtx context.Context) error {
		return s.orders.Delete(txCtx, order.ID, order.Status, order.Version)
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleOrder) {
			return &ServiceError{StatusCode: 400, Message: "Order was modified concurrently; please retry"}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("order deletion failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete order"}
	}

	s.invalidateProducts(ctx, order.Items)
	s.logger.Info("order deleted", zap.String("order_number", order.OrderNumber))
	return nil
}

// GetOrder returns one order visible to the caller.
func (s *OrderService) GetOrder(ctx context.Context, actorID string, role models.Role, orderID string) (*models.Order, *ServiceError) {
	return s.loadOwned(ctx, actorID, role, orderID)
}

// GetTimeline returns the structured status history of an order.
func (s *OrderService) GetTimeline(ctx context.Context, actorID string, role models.Role, orderID string) ([]models.StatusEvent, *ServiceError) {
	order, svcErr := s.loadOwned(ctx, actorID, role, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	return order.Events, nil
}

// ListOrders returns the caller's orders, newest first, optionally
// filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, actorID string, role models.Role, status string, page, limit int) (*OrderListResponse, *ServiceError) {
	id, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	filter := repository.OrderListFilter{Page: page, Limit: limit}
	switch role {
	case models.RoleWholesaler:
		filter.WholesalerID = &id
	case models.RoleSupplier:
		filter.SupplierID = &id
	case models.RoleTransporter:
		filter.TransporterID = &id
	default:
		return nil, &ServiceError{StatusCode: 400, Message: "Unknown role"}
	}
	if status != "" {
		st := models.OrderStatus(status)
		if !statemachine.Known(st) {
			return nil, &ServiceError{StatusCode: 400, Message: "Unknown status filter: " + status}
		}
		filter.Status = st
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list orders", zap.String("actor_id", actorID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  totalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// UpdatePaymentStatus flips the payment flag on a supplier's order.
// Payment state is independent of the lifecycle machine.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, supplierID, orderID string, req *models.UpdatePaymentRequest) (*models.Order, *ServiceError) {
	order, svcErr := s.loadOwned(ctx, supplierID, models.RoleSupplier, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	updated, err := s.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatus(req.PaymentStatus))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("payment status update failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update payment status"}
	}
	return updated, nil
}

// transition validates the requested move against the table and
// commits it with a compare-and-swap on (status, version). Stock
// compensation, when the transition implies it, joins the same
// transaction as the status write.
func (s *OrderService) transition(ctx context.Context, order *models.Order, role models.Role, req *models.UpdateStatusRequest) (*models.Order, *ServiceError) {
	requested := models.OrderStatus(req.Status)

	if err := statemachine.Validate(order.Status, requested, role); err != nil {
		return nil, transitionError(err)
	}

	commit := repository.TransitionCommit{
		OrderID:         order.ID,
		FromStatus:      order.Status,
		ToStatus:        requested,
		ExpectedVersion: order.Version,
		ActorRole:       role,
		Reason:          req.Reason,
		TimestampField:  statemachine.TimestampField(requested),
		At:              time.Now().UTC(),
	}

	if statemachine.AssignsTransporter(requested) {
		if req.TransporterID == "" {
			return nil, &ServiceError{StatusCode: 400, Message: "transporter_id is required to assign a transporter"}
		}
		tid, err := primitive.ObjectIDFromHex(req.TransporterID)
		if err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: "Invalid transporter ID format"}
		}
		commit.TransporterID = &tid
	}

	var updated *models.Order
	var err error
	restores := statemachine.RestoresStock(order.Status, requested)
	if restores {
		// Early cancellation: restore every line item and flip the
		// status in one transaction.
		err = s.bulk.Run(ctx, restoreOps(order), func(txCtx context.Context) error {
			var cerr error
			updated, cerr = s.orders.CommitTransition(txCtx, commit)
			return cerr
		})
	} else {
		updated, err = s.orders.CommitTransition(ctx, commit)
	}

	if err != nil {
		if errors.Is(err, repository.ErrStaleOrder) {
			return nil, &ServiceError{StatusCode: 400, Message: "Order was modified concurrently; please retry"}
		}
		if errors.Is(err, stock.ErrInsufficientStock) {
			// Restores only increase, so this is unexpected; keep the
			// taxonomy anyway.
			return nil, &ServiceError{StatusCode: 400, Message: err.Error()}
		}
		s.logger.Error("transition commit failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", order.Status.String()),
			zap.String("to", requested.String()),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update order status"}
	}

	if restores {
		s.invalidateProducts(ctx, order.Items)
	}
	s.logger.Info("order status updated",
		zap.String("order_number", updated.OrderNumber),
		zap.String("from", order.Status.String()),
		zap.String("to", requested.String()),
		zap.String("role", role.String()),
	)
	s.publishEvent(ctx, updated, order.Status, requested, role, req.Reason)

	return updated, nil
}

func (s *OrderService) load(ctx context.Context, orderID string) (*models.Order, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid order ID format"}
	}
	order, err := s.orders.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
	}
	if err != nil {
		s.logger.Error("failed to load order", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}
	return order, nil
}

// loadOwned loads an order and checks it is visible to the actor.
// Non-owners get the same 404 a missing order would, so existence is
// not leaked.
func (s *OrderService) loadOwned(ctx context.Context, actorID string, role models.Role, orderID string) (*models.Order, *ServiceError) {
	aid, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}
	order, svcErr := s.load(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	owned := false
	switch role {
	case models.RoleWholesaler:
		owned = order.WholesalerID == aid
	case models.RoleSupplier:
		owned = order.SupplierID == aid
	case models.RoleTransporter:
		owned = (order.TransporterID != nil && *order.TransporterID == aid) ||
			(order.ReturnTransporterID != nil && *order.ReturnTransporterID == aid)
	}
	if !owned {
		return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
	}
	return order, nil
}

func (s *OrderService) publishEvent(ctx context.Context, o *models.Order, from, to models.OrderStatus, role models.Role, reason string) {
	if s.producer == nil {
		return
	}
	evt := models.OrderEventMessage{
		OrderID:     o.ID.Hex(),
		OrderNumber: o.OrderNumber,
		FromStatus:  from,
		ToStatus:    to,
		ActorRole:   role,
		Reason:      reason,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.producer.PublishOrderEvent(ctx, evt); err != nil {
		// Best-effort: downstream consumers catch up elsewhere.
		s.logger.Warn("order event publish failed", zap.String("order_number", o.OrderNumber), zap.Error(err))
	}
}

// invalidateProducts drops the cache entries for every product whose
// stock a committed order mutation just changed. Best-effort: a failed
// invalidation only shortens cache accuracy, never the write.
func (s *OrderService) invalidateProducts(ctx context.Context, items []models.LineItem) {
	if s.cache == nil || len(items) == 0 {
		return
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID.Hex())
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Strings("product_ids", ids), zap.Error(err))
	}
}

func restoreOps(o *models.Order) []stock.Operation {
	ops := make([]stock.Operation, 0, len(o.Items))
	for _, it := range o.Items {
		ops = append(ops, stock.Operation{ProductID: it.ProductID, Quantity: it.Quantity, Op: stock.OpIncrease})
	}
	return ops
}

func transitionError(err error) *ServiceError {
	var denied *statemachine.TransitionDeniedError
	if errors.As(err, &denied) {
		return &ServiceError{StatusCode: 400, Message: denied.Error()}
	}
	if errors.Is(err, statemachine.ErrUnknownStatus) {
		return &ServiceError{StatusCode: 400, Message: err.Error()}
	}
	return &ServiceError{StatusCode: 500, Message: "Failed to validate transition"}
}

func totalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
