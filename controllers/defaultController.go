package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/initializers"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Forkitt API.

The following are the endpoints for this API:

ORDERS
- POST "/orders" - Place a new order
- GET "/orders/{orderNumber}" - Get order status
- GET "/orders/{orderNumber}/owner-action?action=&token=" - Owner accept/reject link

WEBHOOKS
- POST "/webhooks/twilio/whatsapp" - Inbound WhatsApp messages
- POST "/webhooks/sendgrid/inbound" - Inbound email replies
- POST "/webhooks/stripe" - Stripe checkout events

ADMIN (restaurant token)
- GET "/admin/orders" - List your orders
- PATCH "/admin/orders/{orderId}/status" - Advance an order
- PATCH "/admin/orders/{orderId}/pickup-time" - Reschedule an order
- GET "/admin/customers" - List your customers
- POST "/admin/customers/message" - Message selected customers
- POST "/admin/topup" - Buy credits
- POST "/admin/magic-link" / "/admin/magic-link/verify" - Passwordless sign-in

SUPERADMIN (platform token)
- POST/GET "/superadmin/restaurants" - Manage restaurants
- PATCH/DELETE "/superadmin/restaurants/{restaurantId}"
- POST "/superadmin/restaurants/{restaurantId}/credits" - Adjust balance`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

func Healthz(ctx *gin.Context) {
	db, err := initializers.DB.DB()
	if err != nil || db.Ping() != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
