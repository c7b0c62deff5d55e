package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// respondWithServiceError maps the service error taxonomy onto HTTP statuses.
// Cross-tenant access surfaces as 404, indistinguishable from true absence.
func respondWithServiceError(ctx *gin.Context, err error) {
	var itemNotFound *services.ItemNotFoundError
	var itemUnavailable *services.ItemUnavailableError
	var illegal *services.IllegalTransitionError

	switch {
	case errors.Is(err, services.ErrInsufficientCredit):
		sendErrorResponse(ctx, http.StatusPaymentRequired, err.Error())
	case errors.As(err, &itemNotFound), errors.As(err, &itemUnavailable), errors.As(err, &illegal):
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrRestaurantNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, err.Error())
	default:
		initializers.Log.Errorw("unexpected service error", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
	}
}
