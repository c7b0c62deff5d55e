package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireSuperadmin checks the platform token. There is no bypass flag: an
// unset SUPER_ADMIN_TOKEN disables the whole superadmin surface.
func RequireSuperadmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		expected := os.Getenv("SUPER_ADMIN_TOKEN")
		if expected == "" {
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Superadmin access is not configured"})
			return
		}

		token := ctx.GetHeader("X-Superadmin-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid superadmin token"})
			return
		}
		ctx.Next()
	}
}
