package routes

import (
	"github.com/gin-gonic/gin"

	"supply-order-service/controllers"
	"supply-order-service/middleware"
	"supply-order-service/models"
)

// RegisterRoutes wires the role-scoped endpoints.
func RegisterRoutes(
	r *gin.Engine,
	jwtSecret string,
	wholesaler *controllers.WholesalerController,
	supplier *controllers.SupplierController,
	transporter *controllers.TransporterController,
) {
	auth := middleware.AuthMiddleware(jwtSecret)

	wh := r.Group("/orders")
	wh.Use(auth, middleware.RequireRole(models.RoleWholesaler))
	{
		wh.POST("", wholesaler.CreateOrder)
		wh.GET("", wholesaler.ListOrders)
		wh.GET("/:id", wholesaler.GetOrder)
		wh.GET("/:id/timeline", wholesaler.GetTimeline)
		wh.PUT("/:id/status", wholesaler.UpdateStatus)
		wh.DELETE("/:id", wholesaler.DeleteOrder)
	}

	sp := r.Group("/suppliers")
	sp.Use(auth, middleware.RequireRole(models.RoleSupplier))
	{
		sp.GET("/orders", supplier.ListOrders)
		sp.GET("/orders/:id", supplier.GetOrder)
		sp.GET("/orders/:id/timeline", supplier.GetTimeline)
		sp.PUT("/orders/:id/status", supplier.UpdateStatus)
		sp.PUT("/orders/:id/payment", supplier.UpdatePayment)

		sp.POST("/products", supplier.CreateProduct)
		sp.GET("/products", supplier.ListProducts)
		sp.GET("/products/low-stock", supplier.ListLowStock)
		sp.GET("/products/:id", supplier.GetProduct)
		sp.PUT("/products/:id/stock", supplier.AdjustStock)
	}

	tr := r.Group("/transporters")
	tr.Use(auth, middleware.RequireRole(models.RoleTransporter))
	{
		tr.GET("/orders", transporter.ListOrders)
		tr.GET("/orders/:id", transporter.GetOrder)
		tr.PUT("/orders/:id/status", transporter.UpdateStatus)
	}

	ret := r.Group("/return-orders")
	ret.Use(auth, middleware.RequireRole(models.RoleTransporter))
	{
		ret.PUT("/:id/accept", transporter.AcceptReturn)
	}
}
