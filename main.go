package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/middlewares"
	"github.com/modernwebbuilds/forkitt-api/providers"
	"github.com/modernwebbuilds/forkitt-api/routes"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func init() {
	initializers.LoadEnv()
	initializers.InitLogger()
	initializers.ConnectToDB()
	initializers.SyncDatabase()
}

func main() {
	server := gin.Default()
	server.Use(middlewares.RequestID())

	allowOrigins := []string{"http://localhost:5174"}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		allowOrigins = append(allowOrigins, frontend)
	}
	server.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Superadmin-Token", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	twilio := providers.NewTwilioClient()
	var email services.EmailSender
	if sendgrid := providers.NewSendgridClient(); sendgrid.Configured() {
		email = sendgrid
	} else {
		email = providers.NewSMTPSender()
	}
	dispatcher := services.NewDispatcher(initializers.DB, twilio, twilio, email)

	routes.DefaultRoutes(server)
	routes.OrderRoutes(server, dispatcher)
	routes.WebhookRoutes(server, dispatcher, twilio)
	routes.AdminRoutes(server, dispatcher)
	routes.SuperadminRoutes(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go services.RunFollowupSweeper(ctx, initializers.DB, dispatcher, time.Minute)

	server.Run()
}
