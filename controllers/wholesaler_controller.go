package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supply-order-service/middleware"
	"supply-order-service/models"
	"supply-order-service/services"
)

// WholesalerController handles the buyer side of the lifecycle:
// placing orders, confirming or cancelling early, deletion while
// pending, and the post-delivery certify / return request.
type WholesalerController struct {
	orderService *services.OrderService
}

func NewWholesalerController(orderService *services.OrderService) *WholesalerController {
	return &WholesalerController{orderService: orderService}
}

// CreateOrder handles POST /orders.
func (wc *WholesalerController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := wc.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Order created", "order": order})
}

// UpdateStatus handles PUT /orders/:id/status.
func (wc *WholesalerController) UpdateStatus(c *gin.Context) {
	updateStatus(c, wc.orderService, models.RoleWholesaler)
}

// DeleteOrder handles DELETE /orders/:id.
func (wc *WholesalerController) DeleteOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	if svcErr := wc.orderService.DeleteOrder(c.Request.Context(), userID, c.Param("id")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order deleted and stock restored"})
}

// GetOrder handles GET /orders/:id.
func (wc *WholesalerController) GetOrder(c *gin.Context) {
	getOrder(c, wc.orderService, models.RoleWholesaler)
}

// ListOrders handles GET /orders.
func (wc *WholesalerController) ListOrders(c *gin.Context) {
	listOrders(c, wc.orderService, models.RoleWholesaler)
}

// GetTimeline handles GET /orders/:id/timeline.
func (wc *WholesalerController) GetTimeline(c *gin.Context) {
	getTimeline(c, wc.orderService, models.RoleWholesaler)
}

// ---- shared handler bodies, one per operation shape ----

func updateStatus(c *gin.Context, svc *services.OrderService, role models.Role) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := svc.UpdateStatus(c.Request.Context(), userID, role, c.Param("id"), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated", "order": order})
}

func getOrder(c *gin.Context, svc *services.OrderService, role models.Role) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	order, svcErr := svc.GetOrder(c.Request.Context(), userID, role, c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func listOrders(c *gin.Context, svc *services.OrderService, role models.Role) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)
	result, svcErr := svc.ListOrders(c.Request.Context(), userID, role, c.Query("status"), page, limit)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": result.Orders, "meta": result.Meta})
}

func getTimeline(c *gin.Context, svc *services.OrderService, role models.Role) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	events, svcErr := svc.GetTimeline(c.Request.Context(), userID, role, c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

func parsePaginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
