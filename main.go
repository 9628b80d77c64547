package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maidbook/config"
	"maidbook/cron"
	"maidbook/database"
	"maidbook/database/repository"
	"maidbook/handlers"
	"maidbook/routes"
	"maidbook/services/booking"
	"maidbook/services/notification"
	"maidbook/services/payment"
	"maidbook/services/session"
	"maidbook/services/user"
	"maidbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if err := config.Validate(); err != nil {
		logger.Sugar().Fatalf("main: invalid configuration: %v", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitSessionCache()
	stripe.Key = config.AppConfig.StripeKey

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := utils.FirebaseInit(rootCtx); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	}
	cld, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary: %v", err)
	}

	// repositories.
	db := database.Database()
	catalogRepo := repository.NewMongoCatalogRepo(db, cld, logger)
	bookingRepo := repository.NewMongoBookingRepo(db, logger)
	userRepo := repository.NewMongoUserRepo(db, logger)
	subscriptionRepo := repository.NewMongoSubscriptionRepo(db, logger)

	// services.
	signer := payment.NewSigner(config.AppConfig.PaymentSigningSecret)
	userService := &user.DefaultUserService{Repo: userRepo, TokenTTL: config.AppConfig.JWTTTL}

	var sender notification.MessageSender
	if utils.FCMClient != nil {
		sender = utils.FCMClient
	}
	pushSender := notification.NewPushSender(userRepo, sender, logger)

	asynqClient := asynq.NewClient(cron.RedisOpt())
	defer asynqClient.Close()
	worker := cron.InitCompletionWorker(pushSender, logger)

	bookingHandler := &handlers.BookingHandler{
		Sessions: session.NewRedisStore(utils.GetSessionClient(), config.AppConfig.SessionTTL),
		Users:    userService,
		Deps: booking.Dependencies{
			Catalog:      catalogRepo,
			Subscription: subscriptionRepo,
			Gateway:      payment.NewStripeGateway(signer, logger),
			Verifier:     payment.NewStripeVerifier(signer, logger, nil),
			Store:        bookingRepo,
			Completion:   notification.NewAsynqCompletionSignal(asynqClient, logger),
		},
		Config: booking.Config{
			ServiceID:       config.AppConfig.ServiceID,
			Currency:        config.AppConfig.PaymentCurrency,
			FetchTimeout:    config.AppConfig.FetchTimeout,
			CompletionDelay: config.AppConfig.CompletionDelay,
		},
	}

	utils.StartHealthMonitor(rootCtx, utils.GetSessionClient(), database.MongoClient)

	handlerBundle := &handlers.HandlerBundle{
		Booking: bookingHandler,
		History: &handlers.HistoryHandler{Bookings: bookingRepo},
		Health:  routes.HealthHandler,
	}

	router := gin.New()
	if err := router.SetTrustedProxies(config.AppConfig.TrustedProxies); err != nil {
		logger.Sugar().Fatalf("main: invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(gin.Recovery())
	routes.RegisterRoutes(router, handlerBundle, logger)

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
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
