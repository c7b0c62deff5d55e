package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/controllers"
	"github.com/modernwebbuilds/forkitt-api/providers"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func WebhookRoutes(server *gin.Engine, dispatcher *services.Dispatcher, twilio *providers.TwilioClient) {
	webhooks := server.Group("/webhooks")
	webhooks.POST("/twilio/whatsapp", controllers.TwilioWhatsappInbound(dispatcher, twilio))
	webhooks.POST("/sendgrid/inbound", controllers.SendgridInbound(dispatcher))
	webhooks.POST("/stripe", controllers.StripeWebhook)
}
