package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/controllers"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func OrderRoutes(server *gin.Engine, dispatcher *services.Dispatcher) {
	server.POST("/orders", controllers.PlaceOrder(dispatcher))
	server.GET("/orders/:orderNumber", controllers.GetOrderStatus)
	server.GET("/orders/:orderNumber/owner-action", controllers.OwnerAction(dispatcher))
}
