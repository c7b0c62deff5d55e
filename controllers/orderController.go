package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func restaurantName(restaurantID uint) string {
	var restaurant models.Restaurant
	if err := initializers.DB.First(&restaurant, restaurantID).Error; err != nil {
		return ""
	}
	return restaurant.Name
}

// PlaceOrder creates an order and schedules the owner notification after the
// transaction has committed; a messaging outage never loses an order.
func PlaceOrder(dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var input services.CreateOrderInput
		if err := ctx.ShouldBindJSON(&input); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}

		order, err := services.CreateOrder(initializers.DB, input)
		if err != nil {
			respondWithServiceError(ctx, err)
			return
		}

		var restaurant models.Restaurant
		if err := initializers.DB.First(&restaurant, order.RestaurantID).Error; err == nil {
			go dispatcher.NotifyNewOrder(order, &restaurant)
		}

		sendJSONResponse(ctx, http.StatusCreated, gin.H{"order": order})
	}
}

func GetOrderStatus(ctx *gin.Context) {
	order, err := services.GetOrderByNumber(initializers.DB, ctx.Param("orderNumber"))
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	// The action token is for owner links only, never for the status page.
	order.OwnerActionToken = ""
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"order":          order,
		"restaurantName": restaurantName(order.RestaurantID),
	})
}

// OwnerAction is the passwordless accept/reject link from the owner
// notification. The token is scoped to one order; a repeat click on an
// already-applied action is an idempotent no-op.
func OwnerAction(dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		action := ctx.Query("action")
		token := ctx.Query("token")

		order, err := services.GetOrderByNumber(initializers.DB, ctx.Param("orderNumber"))
		if err != nil {
			respondWithServiceError(ctx, err)
			return
		}

		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(order.OwnerActionToken)) != 1 {
			sendErrorResponse(ctx, http.StatusForbidden, "Invalid action token")
			return
		}

		if action != models.StatusConfirmed && action != models.StatusCancelled {
			sendErrorResponse(ctx, http.StatusBadRequest, "Unsupported action: "+action)
			return
		}

		if order.Status == action {
			sendJSONResponse(ctx, http.StatusOK, gin.H{
				"message": "Order is already " + action + ".",
				"order":   order,
			})
			return
		}

		updated, err := services.AdvanceStatus(initializers.DB, order.ID, action, order.RestaurantID)
		if err != nil {
			respondWithServiceError(ctx, err)
			return
		}

		go dispatcher.NotifyCustomerStatus(updated, restaurantName(updated.RestaurantID))

		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": "Order " + action + ".",
			"order":   updated,
		})
	}
}
