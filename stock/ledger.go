// Package stock is the only mutation surface for product quantity.
// Every operation keeps the low-stock flag and the last-update
// timestamp in step with the quantity.
package stock

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"supply-order-service/models"
)

// ErrInsufficientStock rejects a decrease larger than the available
// quantity. Quantity never goes negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// OpType names a ledger operation.
type OpType string

const (
	OpDecrease OpType = "decrease"
	OpIncrease OpType = "increase"
	OpSet      OpType = "set"
)

// Operation is one ledger entry in a bulk batch, typically one order
// line item.
type Operation struct {
	ProductID primitive.ObjectID
	Quantity  int
	Op        OpType
}

// Decrease removes qty units. It fails without touching the product
// when qty exceeds the available quantity.
func Decrease(p *models.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrease quantity must be positive, got %d", qty)
	}
	if qty > p.Quantity {
		return fmt.Errorf("%w: product %s has %d, requested %d",
			ErrInsufficientStock, p.ID.Hex(), p.Quantity, qty)
	}
	p.Quantity -= qty
	refresh(p)
	return nil
}

// Increase adds qty units. There is no upper bound.
func Increase(p *models.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("increase quantity must be positive, got %d", qty)
	}
	p.Quantity += qty
	refresh(p)
	return nil
}

// Set overwrites the quantity outright. Manual corrections only;
// order flows go through Decrease and Increase.
func Set(p *models.Product, qty int) error {
	if qty < 0 {
		return fmt.Errorf("stock quantity cannot be negative, got %d", qty)
	}
	p.Quantity = qty
	refresh(p)
	return nil
}

// Apply dispatches one operation against a product.
func Apply(p *models.Product, op Operation) error {
	switch op.Op {
	case OpDecrease:
		return Decrease(p, op.Quantity)
	case OpIncrease:
		return Increase(p, op.Quantity)
	case OpSet:
		return Set(p, op.Quantity)
	default:
		return fmt.Errorf("unknown stock operation %q", op.Op)
	}
}

func refresh(p *models.Product) {
	p.LowStockAlert = p.Quantity <= p.LowStockThreshold
	p.LastStockUpdate = time.Now().UTC()
	p.UpdatedAt = p.LastStockUpdate
}
