package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"supply-order-service/cache"
	"supply-order-service/models"
	"supply-order-service/repository"
	"supply-order-service/stock"
)

// ProductService owns the supplier-facing product surface: creation,
// reads (cache in front), manual stock corrections through the ledger
// and low-stock listings.
type ProductService struct {
	products repository.ProductRepository
	cache    *cache.ProductCache
	logger   *zap.Logger
}

func NewProductService(products repository.ProductRepository, productCache *cache.ProductCache, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, cache: productCache, logger: logger}
}

// CreateProduct registers a new stock-keeping unit for a supplier.
func (s *ProductService) CreateProduct(ctx context.Context, supplierID string, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	sid, err := primitive.ObjectIDFromHex(supplierID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid supplier ID format"}
	}

	now := time.Now().UTC()
	minQty := req.MinOrderQuantity
	if minQty == 0 {
		minQty = 1
	}

	p := &models.Product{
		SupplierID:        sid,
		Name:              req.Name,
		SellingPrice:      req.SellingPrice,
		ProductionPrice:   req.ProductionPrice,
		Quantity:          req.Quantity,
		MinOrderQuantity:  minQty,
		LowStockThreshold: req.LowStockThreshold,
		LowStockAlert:     req.Quantity <= req.LowStockThreshold,
		LastStockUpdate:   now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.products.Create(ctx, p); err != nil {
		s.logger.Error("product creation failed", zap.String("supplier_id", supplierID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	s.logger.Info("product created",
		zap.String("product_id", p.ID.Hex()),
		zap.String("supplier_id", supplierID),
		zap.Int("quantity", p.Quantity),
	)
	return p, nil
}

// GetProduct returns one of the supplier's own products, serving from
// the cache when warm. Another supplier's product is indistinguishable
// from a missing one; production prices never leak across suppliers.
func (s *ProductService) GetProduct(ctx context.Context, supplierID, productID string) (*models.Product, *ServiceError) {
	sid, err := primitive.ObjectIDFromHex(supplierID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid supplier ID format"}
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid product ID format"}
	}

	if s.cache != nil {
		if cached, cerr := s.cache.Get(ctx, productID); cerr == nil && cached != nil {
			if cached.SupplierID != sid {
				return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
			}
			return cached, nil
		}
	}

	p, err := s.products.FindByID(ctx, pid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
	}
	if err != nil {
		s.logger.Error("failed to load product", zap.String("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}
	if p.SupplierID != sid {
		return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
	}

	if s.cache != nil {
		if cerr := s.cache.Set(ctx, p); cerr != nil {
			s.logger.Warn("product cache write failed", zap.String("product_id", productID), zap.Error(cerr))
		}
	}
	return p, nil
}

// ListProducts returns a supplier's products, newest first.
func (s *ProductService) ListProducts(ctx context.Context, supplierID string, page, limit int) ([]models.Product, int64, *ServiceError) {
	sid, err := primitive.ObjectIDFromHex(supplierID)
	if err != nil {
		return nil, 0, &ServiceError{StatusCode: 400, Message: "Invalid supplier ID format"}
	}

	products, total, err := s.products.FindBySupplier(ctx, sid, page, limit)
	if err != nil {
		s.logger.Error("failed to list products", zap.String("supplier_id", supplierID), zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "Failed to fetch products"}
	}
	return products, total, nil
}

// AdjustStock is the manual correction path: a ledger set, never used
// by order flows. The cache entry is dropped so readers see the new
// quantity immediately.
func (s *ProductService) AdjustStock(ctx context.Context, supplierID, productID string, req *models.AdjustStockRequest) (*models.Product, *ServiceError) {
	sid, err := primitive.ObjectIDFromHex(supplierID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid supplier ID format"}
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid product ID format"}
	}

	p, err := s.products.FindByID(ctx, pid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
	}
	if err != nil {
		s.logger.Error("failed to load product", zap.String("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}
	if p.SupplierID != sid {
		return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
	}

	if req.Threshold != nil {
		p.LowStockThreshold = *req.Threshold
	}
	if err := stock.Set(p, *req.Quantity); err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: err.Error()}
	}

	if err := s.products.Replace(ctx, p); err != nil {
		s.logger.Error("stock adjustment failed", zap.String("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to adjust stock"}
	}

	if s.cache != nil {
		if cerr := s.cache.Invalidate(ctx, productID); cerr != nil {
			s.logger.Warn("product cache invalidation failed", zap.String("product_id", productID), zap.Error(cerr))
		}
	}

	s.logger.Info("stock adjusted",
		zap.String("product_id", productID),
		zap.Int("quantity", p.Quantity),
		zap.Bool("low_stock_alert", p.LowStockAlert),
	)
	return p, nil
}

// ListLowStock returns the supplier's products whose quantity sits at
// or below their threshold.
func (s *ProductService) ListLowStock(ctx context.Context, supplierID string) ([]models.Product, *ServiceError) {
	sid, err := primitive.ObjectIDFromHex(supplierID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid supplier ID format"}
	}

	products, err := s.products.FindLowStock(ctx, sid)
	if err != nil {
		s.logger.Error("failed to list low-stock products", zap.String("supplier_id", supplierID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch low-stock products"}
	}
	return products, nil
}
