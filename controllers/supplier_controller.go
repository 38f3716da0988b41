package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"supply-order-service/middleware"
	"supply-order-service/models"
	"supply-order-service/services"
)

// SupplierController handles the seller side: moving orders through
// production and delivery assignment, payment flags, and the product
// / stock surface.
type SupplierController struct {
	orderService   *services.OrderService
	productService *services.ProductService
}

func NewSupplierController(orderService *services.OrderService, productService *services.ProductService) *SupplierController {
	return &SupplierController{orderService: orderService, productService: productService}
}

// UpdateStatus handles PUT /suppliers/orders/:id/status.
func (sc *SupplierController) UpdateStatus(c *gin.Context) {
	updateStatus(c, sc.orderService, models.RoleSupplier)
}

// GetOrder handles GET /suppliers/orders/:id.
func (sc *SupplierController) GetOrder(c *gin.Context) {
	getOrder(c, sc.orderService, models.RoleSupplier)
}

// ListOrders handles GET /suppliers/orders.
func (sc *SupplierController) ListOrders(c *gin.Context) {
	listOrders(c, sc.orderService, models.RoleSupplier)
}

// GetTimeline handles GET /suppliers/orders/:id/timeline.
func (sc *SupplierController) GetTimeline(c *gin.Context) {
	getTimeline(c, sc.orderService, models.RoleSupplier)
}

// UpdatePayment handles PUT /suppliers/orders/:id/payment.
func (sc *SupplierController) UpdatePayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req models.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := sc.orderService.UpdatePaymentStatus(c.Request.Context(), userID, c.Param("id"), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment status updated", "order": order})
}

// CreateProduct handles POST /suppliers/products.
func (sc *SupplierController) CreateProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := sc.productService.CreateProduct(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product created", "product": product})
}

// GetProduct handles GET /suppliers/products/:id.
func (sc *SupplierController) GetProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	product, svcErr := sc.productService.GetProduct(c.Request.Context(), userID, c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// ListProducts handles GET /suppliers/products.
func (sc *SupplierController) ListProducts(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)
	products, total, svcErr := sc.productService.ListProducts(c.Request.Context(), userID, page, limit)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": products, "total": total})
}

// AdjustStock handles PUT /suppliers/products/:id/stock.
func (sc *SupplierController) AdjustStock(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := sc.productService.AdjustStock(c.Request.Context(), userID, c.Param("id"), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stock adjusted", "product": product})
}

// ListLowStock handles GET /suppliers/products/low-stock.
func (sc *SupplierController) ListLowStock(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	products, svcErr := sc.productService.ListLowStock(c.Request.Context(), userID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}
