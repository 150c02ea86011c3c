package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/rajasekharstrikes1/society-pay/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Gate      *apiHandler.GateHandler
	Payment   *apiHandler.PaymentHandler
	Community *apiHandler.CommunityHandler
	Plan      *apiHandler.PlanHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Webhook: authenticated by its own signature, not by JWT
	r.POST("/webhooks/razorpay", handlers.Payment.Webhook)

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Auth.GetProfile))

	r.POST("/api/v1/gate/evaluate", authMiddleware(handlers.Gate.Evaluate))
	r.POST("/api/v1/gate/bypass", authMiddleware(handlers.Gate.Bypass))

	r.GET("/api/v1/communities/{id}", authMiddleware(handlers.Community.Get))
	r.PUT("/api/v1/communities/{id}", authMiddleware(handlers.Community.Upsert))
	r.GET("/api/v1/communities/{id}/subscription", authMiddleware(handlers.Community.GetSubscription))

	r.GET("/api/v1/plans", authMiddleware(handlers.Plan.List))

	r.POST("/api/v1/payments/order", authMiddleware(handlers.Payment.CreateOrder))
	r.POST("/api/v1/payments/verify", authMiddleware(handlers.Payment.VerifyPayment))
	r.GET("/api/v1/payments/orders", authMiddleware(handlers.Payment.ListOrders))

	return r
}
