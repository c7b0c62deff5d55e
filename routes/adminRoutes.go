package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/controllers"
	"github.com/modernwebbuilds/forkitt-api/middlewares"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func AdminRoutes(server *gin.Engine, dispatcher *services.Dispatcher) {
	server.POST("/admin/magic-link", controllers.RequestMagicLink(dispatcher))
	server.POST("/admin/magic-link/verify", controllers.VerifyMagicLink)

	admin := server.Group("/admin", middlewares.RequireRestaurant())
	admin.GET("/orders", controllers.ListAdminOrders)
	admin.PATCH("/orders/:orderId/status", controllers.UpdateOrderStatus(dispatcher))
	admin.PATCH("/orders/:orderId/pickup-time", controllers.UpdatePickupTime(dispatcher))
	admin.GET("/customers", controllers.ListCustomers)
	admin.POST("/customers/message", controllers.SendCustomerMessage(dispatcher))
	admin.POST("/topup", controllers.CreateTopupSession)
}
