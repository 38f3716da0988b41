package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"supply-order-service/middleware"
	"supply-order-service/models"
	"supply-order-service/services"
)

// TransporterController handles both legs a transporter can drive:
// the delivery transitions and the return sub-workflow, including the
// first-acceptor-wins return claim.
type TransporterController struct {
	orderService *services.OrderService
}

func NewTransporterController(orderService *services.OrderService) *TransporterController {
	return &TransporterController{orderService: orderService}
}

// UpdateStatus handles PUT /transporters/orders/:id/status. The
// service decides from the matching transporter reference whether the
// caller is driving the delivery or the return leg.
func (tc *TransporterController) UpdateStatus(c *gin.Context) {
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

	order, svcErr := tc.orderService.TransporterUpdateStatus(c.Request.Context(), userID, c.Param("id"), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated", "order": order})
}

// AcceptReturn handles PUT /return-orders/:id/accept.
func (tc *TransporterController) AcceptReturn(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	order, svcErr := tc.orderService.AcceptReturn(c.Request.Context(), userID, c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Return accepted", "order": order})
}

// GetOrder handles GET /transporters/orders/:id.
func (tc *TransporterController) GetOrder(c *gin.Context) {
	getOrder(c, tc.orderService, models.RoleTransporter)
}

// ListOrders handles GET /transporters/orders.
func (tc *TransporterController) ListOrders(c *gin.Context) {
	listOrders(c, tc.orderService, models.RoleTransporter)
}
