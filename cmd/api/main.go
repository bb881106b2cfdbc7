package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/activation_api/internal/cache"
	"github.com/GTDGit/activation_api/internal/chat"
	"github.com/GTDGit/activation_api/internal/config"
	"github.com/GTDGit/activation_api/internal/database"
	"github.com/GTDGit/activation_api/internal/handler"
	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/repository"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

// main is the application entrypoint for the activation document API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("timezone", cfg.Timezone.String()).Msg("starting activation api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis (session store)
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3c. Attachment storage
	s3Svc, err := service.NewS3Service(ctx, &cfg.S3)
	if err != nil {
		log.Error().Err(err).Msg("S3 initialization failed")
		fmt.Fprintf(os.Stderr, "S3 initialization failed: %v\n", err)
		os.Exit(1)
	}

	// 4. Initialize repositories
	adminRepo := repository.NewAdminUserRepository(db)
	managerRepo := repository.NewSalesManagerRepository(db)
	workerRepo := repository.NewWorkerUserRepository(db)
	contactCodeRepo := repository.NewContactCodeRepository(db)
	planRepo := repository.NewServicePlanRepository(db)
	priceRepo := repository.NewSettlementPriceRepository(db)
	chatRepo := repository.NewChatMessageRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// 5. Initialize services
	sessionSvc := service.NewSessionService(cache.NewSessionStore(redisClient), cfg.Session.TTL)
	authSvc := service.NewAuthService(adminRepo, managerRepo, workerRepo, sessionSvc)
	identitySvc := service.NewIdentityService(adminRepo, managerRepo, workerRepo, sessionSvc)
	contactCodeSvc := service.NewContactCodeService(contactCodeRepo, managerRepo)
	planSvc := service.NewServicePlanService(planRepo)
	settlementSvc := service.NewSettlementService(priceRepo)
	documentSvc := service.NewDocumentService(documentRepo, contactCodeSvc, settlementSvc, planRepo, s3Svc, cfg.Carriers, cfg.Timezone)

	chatHub := chat.NewHub()
	chatSvc := service.NewChatService(chatRepo, documentSvc, sessionSvc, chatHub, cfg.JWTSecret, cfg.Chat.TicketTTL)

	// 6. Initialize handlers
	invalidAuthLimiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	defer invalidAuthLimiter.Stop()

	authHandler := handler.NewAuthHandler(authSvc, invalidAuthLimiter)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	contactCodeHandler := handler.NewContactCodeHandler(contactCodeSvc)
	planHandler := handler.NewServicePlanHandler(planSvc)
	pricingHandler := handler.NewPricingHandler(settlementSvc)
	identityHandler := handler.NewIdentityHandler(identitySvc)
	chatHandler := handler.NewChatHandler(chatSvc, chatHub, middleware.OriginHosts(cfg.Chat.AllowedOrigins))
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": handler.PingerFunc(db.PingContext),
		"redis":    redisClient,
	})

	// 7. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			log.Fatal().Err(err).Msg("failed to register validators")
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Chat.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())

	authMW := middleware.NewAuthMiddleware(sessionSvc, invalidAuthLimiter)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.GET("/health", healthHandler.GetHealth)
	v1.POST("/auth/login", authHandler.Login)
	// Websocket joins authenticate with a chat ticket instead of a bearer token.
	v1.GET("/documents/:id/chat/ws", chatHandler.Stream)

	authed := v1.Group("")
	authed.Use(authMW.Handle())
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)

		authed.POST("/documents", documentHandler.Create)
		authed.GET("/documents", documentHandler.List)
		authed.GET("/documents/:id", documentHandler.Get)
		authed.PUT("/documents/:id", documentHandler.Resubmit)
		authed.PATCH("/documents/:id/status", documentHandler.SetIntakeStatus)
		authed.POST("/documents/:id/transitions", documentHandler.Transition)
		authed.DELETE("/documents/:id", documentHandler.Delete)

		authed.POST("/documents/:id/chat/ticket", chatHandler.IssueTicket)
		authed.GET("/documents/:id/chat/messages", chatHandler.History)
		authed.POST("/documents/:id/chat/messages", chatHandler.Send)

		authed.GET("/contact-codes/:code/resolve", contactCodeHandler.Resolve)
		authed.GET("/service-plans", planHandler.List)
		authed.GET("/service-plans/:id", planHandler.Get)
	}

	// Admin routes; each service re-checks the principal.
	admin := authed.Group("/admin")
	{
		admin.GET("/contact-codes", contactCodeHandler.List)
		admin.GET("/contact-codes/:code", contactCodeHandler.Get)
		admin.POST("/contact-codes", contactCodeHandler.Create)
		admin.PUT("/contact-codes/:code", contactCodeHandler.Update)
		admin.DELETE("/contact-codes/:code", contactCodeHandler.Deactivate)

		admin.POST("/service-plans", planHandler.Create)
		admin.PUT("/service-plans/:id", planHandler.Update)
		admin.DELETE("/service-plans/:id", planHandler.Deactivate)
		admin.GET("/service-plans/:id/settlement-prices", pricingHandler.History)

		admin.GET("/settlement-prices", pricingHandler.ListActive)
		admin.POST("/settlement-prices", pricingHandler.SetPrice)

		admin.GET("/admins", identityHandler.ListAdmins)
		admin.POST("/admins", identityHandler.CreateAdmin)
		admin.GET("/sales-managers", identityHandler.ListSalesManagers)
		admin.POST("/sales-managers", identityHandler.CreateSalesManager)
		admin.GET("/workers", identityHandler.ListWorkers)
		admin.POST("/workers", identityHandler.CreateWorker)
		admin.PATCH("/accounts/:kind/:id/active", identityHandler.SetActive)
	}

	// 8. Start server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
