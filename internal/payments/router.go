package payments

import (
	"cinematickets/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures the account statement routes. auth must set the account id.
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	payments := rg.Group("/payments")
	payments.Use(auth, middleware.RequireAccount())
	{
		payments.GET("/charges", controller.ListCharges) // GET /api/v1/payments/charges
	}
}
