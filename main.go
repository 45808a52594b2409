package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servify/config"
	"servify/cron"
	"servify/database"
	bookingRepo "servify/database/repository/booking"
	ledgerRepo "servify/database/repository/ledger"
	"servify/handlers"
	"servify/middleware"
	"servify/routes"
	"servify/services/payment"
	"servify/services/tasks"
	"servify/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	ledger := ledgerRepo.NewMongoEventLedger()

	// payment gateway and reconciliation.
	gateway := payment.NewStripeGateway(config.AppConfig.StripeSecretKey)
	reconciler := payment.NewReconciler(bookings, ledger, logger)

	alertNotifier := tasks.NewAsynqAlertNotifier(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAlertQueueDB,
	})
	defer alertNotifier.Close()

	// services.
	checkoutService := payment.NewCheckoutService(gateway, bookings, payment.CheckoutConfig{
		AppID:           config.AppConfig.AppID,
		DefaultCurrency: config.AppConfig.DefaultCurrency,
		SuccessURL:      config.AppConfig.CheckoutSuccessURL,
		CancelURL:       config.AppConfig.CheckoutCancelURL,
	}, logger)

	webhookService := payment.NewWebhookService(
		config.AppConfig.StripeWebhookSecret,
		config.AppConfig.AppID,
		reconciler,
		bookings,
		logger,
	)

	refundService := payment.NewRefundService(gateway, bookings, alertNotifier, logger)

	paymentHandler := handlers.NewPaymentHandler(checkoutService, webhookService, refundService, logger)

	routes.RegisterRoutes(router, paymentHandler)

	// Background workers.
	cron.InitAlertWorker()
	utils.StartHealthMonitor(utils.GetAuthCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
