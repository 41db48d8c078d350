package purchases

import (
	"github.com/gin-gonic/gin"
)

// SetupPurchaseRoutes configures all purchase-related routes
func SetupPurchaseRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	purchases := rg.Group("/purchases")
	if auth != nil {
		purchases.Use(auth)
	}
	{
		purchases.GET("/prices", controller.GetPrices)     // GET  /api/v1/purchases/prices
		purchases.POST("/quote", controller.QuotePurchase) // POST /api/v1/purchases/quote
		purchases.POST("", controller.CreatePurchase)      // POST /api/v1/purchases
	}
}

// Route definitions for reference:
//
// POST   /api/v1/purchases/quote
// Request body: { "account_id": 1, "tickets": [{ "type": "ADULT", "quantity": 2 }, { "type": "INFANT", "quantity": 1 }] }
//
// POST   /api/v1/purchases                  (optional header Idempotency-Key)
// Same body. Charges the account, then reserves the seats.
//
// A bearer token with an account_id claim replaces the account_id in the body.
