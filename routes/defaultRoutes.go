package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modernwebbuilds/forkitt-api/controllers"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
	server.GET("/healthz", controllers.Healthz)
	server.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
