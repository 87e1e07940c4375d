package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"home-kitchen-market/internal/api"
	"home-kitchen-market/internal/config"
	"home-kitchen-market/internal/modules/catalog"
	"home-kitchen-market/internal/modules/feedback"
	"home-kitchen-market/internal/modules/orders"
	"home-kitchen-market/internal/modules/payments"
	"home-kitchen-market/internal/modules/subscriptions"
	"home-kitchen-market/internal/modules/users"
	"home-kitchen-market/internal/notifications"
	emailSvc "home-kitchen-market/pkg/email"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	e := echo.New()

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database configuration: %v", err)
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v\n", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}
	e.Logger.Info("Successfully connected to the database!")

	// 4. --- Shared Collaborators ---
	catalogRepo := catalog.NewRepository(dbPool)
	userRepo := users.NewRepository(dbPool)

	// Email notifications are optional; without AWS config the notifier
	// stays nil and every lifecycle notification is a no-op.
	var notifier *notifications.Notifier
	if cfg.AWSRegion != "" && cfg.EmailFrom != "" {
		sender, err := emailSvc.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			log.Fatalf("Unable to initialize SES sender: %v", err)
		}
		tm, err := emailSvc.NewTemplateManager()
		if err != nil {
			log.Fatalf("Unable to parse email templates: %v", err)
		}
		notifier = notifications.New(sender, tm, userRepo, catalogRepo)
	}

	// 5. --- Dependency Injection (Wiring everything up) ---
	// --- Users Module ---
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(userService)

	// --- Orders Module ---
	orderRepo := orders.NewRepository(dbPool)
	orderService := orders.NewService(orderRepo, catalogRepo, userRepo, notifier)
	orderHandler := orders.NewHandler(orderService)

	// --- Subscriptions Module ---
	subscriptionRepo := subscriptions.NewRepository(dbPool)
	subscriptionService := subscriptions.NewService(subscriptionRepo, catalogRepo, notifier)
	subscriptionHandler := subscriptions.NewHandler(subscriptionService)

	// --- Payments Module ---
	gateway := payments.NewHTTPGateway(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.PaymentTimeout)
	paymentRepo := payments.NewRepository(dbPool)
	paymentService := payments.NewService(paymentRepo, gateway, orderService, subscriptionService, notifier, cfg.PaymentKeySecret)
	paymentHandler := payments.NewHandler(paymentService)

	// --- Feedback Module ---
	feedbackRepo := feedback.NewRepository(dbPool)
	feedbackService := feedback.NewService(feedbackRepo, orderService)
	feedbackHandler := feedback.NewHandler(feedbackService)

	// 6. --- Initialize Router ---
	api.SetupRoutes(e,
		userHandler,
		orderHandler,
		subscriptionHandler,
		paymentHandler,
		feedbackHandler,
		cfg.JWTSecret,
	)

	// 7. --- Start Server with graceful shutdown logic ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
