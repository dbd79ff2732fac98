package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"paystack-bridge/internal/handler"
	"paystack-bridge/internal/handler/api"
	"paystack-bridge/internal/middleware"
	"paystack-bridge/internal/payment"
	"paystack-bridge/internal/repository"
)

// Deps bundles what the routes need.
type Deps struct {
	Plugin   *payment.Plugin
	Orders   *repository.OrderRepository
	Payments *repository.PaymentRepository
	Logger   *zap.Logger
	APIKey   string
}

// Setup configures all routes for the Echo server.
func Setup(e *echo.Echo, deps Deps) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.CORS())

	paymentHandler := handler.NewPaymentHandler(deps.Plugin, deps.Orders, deps.Logger)
	adminHandler := api.NewPaymentHandler(deps.Plugin, deps.Payments, deps.Logger)

	// Buyer-facing routes
	e.POST("/checkout/:id", paymentHandler.Checkout)
	e.GET("/orders/:id/thank-you", paymentHandler.ThankYou)

	paymentGroup := e.Group("/payment")
	paymentGroup.GET("/paystack/callback", paymentHandler.PaystackCallback)
	paymentGroup.POST("/paystack/callback", paymentHandler.PaystackCallback)

	// Operator API
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(deps.APIKey))
	apiGroup.POST("/payments/:reference/verify", adminHandler.Verify)
	apiGroup.GET("/orders/:id/payments", adminHandler.OrderPayments)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
