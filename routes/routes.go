package routes

import (
	"net/http"
	"time"

	"servify/handlers"
	"servify/middleware"
	"servify/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPaymentRoutes registers the payment lifecycle endpoints. The
// webhook endpoint stays outside the auth group: the gateway authenticates
// itself through the payload signature, not a bearer token.
func RegisterPaymentRoutes(r *gin.Engine, ph *handlers.PaymentHandler) {
	r.POST("/webhooks/payment", ph.WebhookHandler)

	protected := r.Group("")
	protected.Use(middleware.JWTAuthMiddleware())
	protected.POST("/checkout-sessions", ph.CreateCheckoutSessionHandler)
	protected.POST("/refunds", ph.RefundHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Mongo || !status.Redis {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"mongo":      status.Mongo,
			"redis":      status.Redis,
			"checked_at": status.CheckedAt,
		})
	})
}

// RegisterRoutes wires global middleware and all endpoint groups.
func RegisterRoutes(r *gin.Engine, ph *handlers.PaymentHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Signature", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterPaymentRoutes(r, ph)
}
