package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
)

// RequireRestaurant resolves the Authorization token to a restaurant and
// injects it as the acting principal. Token issuance and rotation are a
// platform concern; the core only maps token to identity.
func RequireRestaurant() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing restaurant token"})
			return
		}

		var restaurant models.Restaurant
		if err := initializers.DB.Where("admin_token = ?", token).First(&restaurant).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid restaurant token"})
			return
		}

		ctx.Set("restaurant", restaurant)
		ctx.Next()
	}
}
