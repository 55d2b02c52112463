// cors.go configures Cross-Origin Resource Sharing (CORS).
//
// The HTML page is served from the same origin, so CORS only matters for
// browser clients hosted elsewhere that call the JSON API directly.
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns configured CORS middleware.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Length", "Content-Disposition", RequestIDHeader},
		MaxAge:        12 * time.Hour, // Cache preflight responses
	})
}
