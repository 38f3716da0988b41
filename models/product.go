package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a supplier-owned stock-keeping unit. Quantity is only
// mutated through the stock ledger so the low-stock flag and the
// last-update timestamp never drift from the quantity itself.
type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SupplierID        primitive.ObjectID `bson:"supplier_id" json:"supplier_id"`
	Name              string             `bson:"name" json:"name"`
	SellingPrice      float64            `bson:"selling_price" json:"selling_price"`
	ProductionPrice   float64            `bson:"production_price" json:"production_price"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	MinOrderQuantity  int                `bson:"min_order_quantity" json:"min_order_quantity"`
	LowStockThreshold int                `bson:"low_stock_threshold" json:"low_stock_threshold"`
	LowStockAlert     bool               `bson:"low_stock_alert" json:"low_stock_alert"`
	LastStockUpdate   time.Time          `bson:"last_stock_update" json:"last_stock_update"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateProductRequest is the payload for registering a new product.
type CreateProductRequest struct {
	Name              string  `json:"name" binding:"required"`
	SellingPrice      float64 `json:"selling_price" binding:"required,gt=0"`
	ProductionPrice   float64 `json:"production_price" binding:"gte=0"`
	Quantity          int     `json:"quantity" binding:"gte=0"`
	MinOrderQuantity  int     `json:"min_order_quantity" binding:"omitempty,min=1"`
	LowStockThreshold int     `json:"low_stock_threshold" binding:"gte=0"`
}

// AdjustStockRequest is a manual stock correction. It overwrites the
// quantity outright; order flows never use it.
type AdjustStockRequest struct {
	Quantity  *int `json:"quantity" binding:"required,gte=0"`
	Threshold *int `json:"threshold" binding:"omitempty,gte=0"`
}
