package api

import (
	"net/http"

	"home-kitchen-market/internal/api/middleware"
	"home-kitchen-market/internal/modules/feedback"
	"home-kitchen-market/internal/modules/orders"
	"home-kitchen-market/internal/modules/payments"
	"home-kitchen-market/internal/modules/subscriptions"
	"home-kitchen-market/internal/modules/users"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	userHandler *users.Handler,
	orderHandler *orders.Handler,
	subscriptionHandler *subscriptions.Handler,
	paymentHandler *payments.Handler,
	feedbackHandler *feedback.Handler,
	jwtSecret string,
) {
	// Initialize the JWT authentication middleware
	authMiddleware := middleware.JWTAuth(jwtSecret)
	// Vendor role authorization for fulfillment transitions
	vendorRequired := middleware.VendorRequired()

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Home Kitchen Marketplace!"})
	})

	// Vendor ratings are public so prospective customers can browse them.
	e.GET("/vendors/:vendorId/rating", feedbackHandler.GetVendorRating)
	e.GET("/vendors/:vendorId/feedback", feedbackHandler.ListVendorFeedback)

	// --- User Profile & Addresses ---
	profileGroup := e.Group("/profile", authMiddleware)
	{
		profileGroup.GET("", userHandler.GetMyProfile)
		profileGroup.PUT("", userHandler.UpdateMyProfile)
		profileGroup.GET("/addresses", userHandler.ListMyAddresses)
		profileGroup.POST("/addresses", userHandler.AddAddress)
		profileGroup.PUT("/addresses/:addressId", userHandler.UpdateAddress)
		profileGroup.DELETE("/addresses/:addressId", userHandler.DeleteAddress)
	}

	// --- Order Routes ---
	orderGroup := e.Group("/orders", authMiddleware)
	{
		orderGroup.POST("", orderHandler.PlaceOrder)
		orderGroup.GET("", orderHandler.ListMyOrders)
		orderGroup.GET("/vendor", orderHandler.ListVendorOrders, vendorRequired)
		orderGroup.GET("/:orderId", orderHandler.GetOrderDetails)
		orderGroup.PUT("/:orderId/cancel", orderHandler.CancelOrder)
		// Forward pipeline transitions are vendor/operator-only.
		orderGroup.PUT("/:orderId/status", orderHandler.AdvanceStatus, vendorRequired)
		orderGroup.POST("/:orderId/feedback", feedbackHandler.SubmitFeedback)
	}

	// --- Subscription Routes ---
	subGroup := e.Group("/subscriptions", authMiddleware)
	{
		subGroup.POST("", subscriptionHandler.CreateSubscription)
		subGroup.GET("", subscriptionHandler.ListMySubscriptions)
		subGroup.GET("/:subscriptionId", subscriptionHandler.GetSubscriptionDetails)
		subGroup.GET("/:subscriptionId/next-delivery", subscriptionHandler.GetNextDelivery)
		subGroup.PUT("/:subscriptionId/pause", subscriptionHandler.PauseSubscription)
		subGroup.PUT("/:subscriptionId/resume", subscriptionHandler.ResumeSubscription)
		subGroup.PUT("/:subscriptionId/cancel", subscriptionHandler.CancelSubscription)
		// Delivery fulfillment is a vendor-driven event, not a timer.
		subGroup.POST("/:subscriptionId/deliveries", subscriptionHandler.RecordDelivery, vendorRequired)
	}

	// --- Payment Routes ---
	paymentGroup := e.Group("/payments", authMiddleware)
	{
		paymentGroup.POST("/intents", paymentHandler.CreateIntent)
		paymentGroup.POST("/orders/confirm", paymentHandler.ConfirmOrderPayment)
		paymentGroup.POST("/subscriptions/confirm", paymentHandler.ConfirmSubscriptionPayment)
	}

	// --- Vendor Feedback Response ---
	e.PUT("/feedback/:feedbackId/response", feedbackHandler.RespondToFeedback, authMiddleware, vendorRequired)
}
