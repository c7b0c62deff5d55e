package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/controllers"
	"github.com/modernwebbuilds/forkitt-api/middlewares"
)

func SuperadminRoutes(server *gin.Engine) {
	superadmin := server.Group("/superadmin", middlewares.RequireSuperadmin())
	superadmin.POST("/restaurants", controllers.CreateRestaurant)
	superadmin.GET("/restaurants", controllers.ListRestaurants)
	superadmin.PATCH("/restaurants/:restaurantId", controllers.UpdateRestaurant)
	superadmin.DELETE("/restaurants/:restaurantId", controllers.DeleteRestaurant)
	superadmin.POST("/restaurants/:restaurantId/credits", controllers.AdjustCredits)
}
