package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supply-order-service/models"
	"supply-order-service/stock"
)

func newProduct(qty, threshold int) *models.Product {
	return &models.Product{
		ID:                primitive.NewObjectID(),
		SupplierID:        primitive.NewObjectID(),
		Name:              "widget",
		Quantity:          qty,
		LowStockThreshold: threshold,
		LowStockAlert:     qty <= threshold,
	}
}

func TestDecrease(t *testing.T) {
	p := newProduct(10, 3)

	assert.NoError(t, stock.Decrease(p, 4))
	assert.Equal(t, 6, p.Quantity)
	assert.False(t, p.LowStockAlert)
	assert.False(t, p.LastStockUpdate.IsZero())
}

func TestDecrease_TriggersLowStockAlert(t *testing.T) {
	p := newProduct(10, 3)

	assert.NoError(t, stock.Decrease(p, 7))
	assert.Equal(t, 3, p.Quantity)
	assert.True(t, p.LowStockAlert)
}

func TestDecrease_InsufficientStockHasNoEffect(t *testing.T) {
	p := newProduct(5, 2)
	before := *p

	err := stock.Decrease(p, 6)
	assert.ErrorIs(t, err, stock.ErrInsufficientStock)
	assert.Equal(t, before.Quantity, p.Quantity)
	assert.Equal(t, before.LowStockAlert, p.LowStockAlert)
	assert.Equal(t, before.LastStockUpdate, p.LastStockUpdate)
}

func TestDecrease_ExactQuantityReachesZero(t *testing.T) {
	p := newProduct(5, 2)

	assert.NoError(t, stock.Decrease(p, 5))
	assert.Equal(t, 0, p.Quantity)
	assert.True(t, p.LowStockAlert)
}

func TestDecrease_RejectsNonPositive(t *testing.T) {
	p := newProduct(5, 2)
	assert.Error(t, stock.Decrease(p, 0))
	assert.Error(t, stock.Decrease(p, -1))
	assert.Equal(t, 5, p.Quantity)
}

func TestIncrease(t *testing.T) {
	p := newProduct(1, 3)
	assert.True(t, p.LowStockAlert)

	assert.NoError(t, stock.Increase(p, 10))
	assert.Equal(t, 11, p.Quantity)
	assert.False(t, p.LowStockAlert)
}

func TestIncrease_RejectsNonPositive(t *testing.T) {
	p := newProduct(1, 3)
	assert.Error(t, stock.Increase(p, 0))
	assert.Equal(t, 1, p.Quantity)
}

func TestSet(t *testing.T) {
	p := newProduct(50, 5)

	assert.NoError(t, stock.Set(p, 2))
	assert.Equal(t, 2, p.Quantity)
	assert.True(t, p.LowStockAlert)

	assert.NoError(t, stock.Set(p, 0))
	assert.Equal(t, 0, p.Quantity)

	assert.Error(t, stock.Set(p, -1))
	assert.Equal(t, 0, p.Quantity)
}

func TestApply(t *testing.T) {
	p := newProduct(10, 2)
	pid := p.ID

	assert.NoError(t, stock.Apply(p, stock.Operation{ProductID: pid, Quantity: 3, Op: stock.OpDecrease}))
	assert.Equal(t, 7, p.Quantity)

	assert.NoError(t, stock.Apply(p, stock.Operation{ProductID: pid, Quantity: 3, Op: stock.OpIncrease}))
	assert.Equal(t, 10, p.Quantity)

	assert.NoError(t, stock.Apply(p, stock.Operation{ProductID: pid, Quantity: 42, Op: stock.OpSet}))
	assert.Equal(t, 42, p.Quantity)

	assert.Error(t, stock.Apply(p, stock.Operation{ProductID: pid, Quantity: 1, Op: "explode"}))
	assert.Equal(t, 42, p.Quantity)
}
