package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/config"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/handlers"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/middleware"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/jwt"
	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/sms"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Tour Kenya booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	userRepo := database.NewUserRepository(db)
	adminRepo := database.NewAdminUserRepository(db)
	refreshTokenRepo := database.NewRefreshTokenRepository(db)
	adminRefreshTokenRepo := database.NewAdminRefreshTokenRepository(db)
	routeRepo := database.NewRouteRepository(db)
	fleetRepo := database.NewFleetRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	receiptRepo := database.NewReceiptRepository(db)
	draftRepo := database.NewDraftRepository(db)
	settingsRepo := database.NewSystemSettingRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)
	procedures := database.NewBookingProcedureRepository(db)

	// Services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	rateLimitService := services.NewRateLimitService(db)
	auditService := services.NewAuditService(db, cfg.Security.EnableAuditLog)
	passengerAuth := services.NewPassengerAuthService(userRepo, refreshTokenRepo, jwtService, cfg.Security.BcryptCost, logger)
	adminAuth := services.NewAdminAuthService(adminRepo, adminRefreshTokenRepo, jwtService, cfg.Security.BcryptCost, logger)

	smsGateway := sms.NewGateway(cfg.SMS.Mode, sms.Config{
		APIURL:   cfg.SMS.APIURL,
		Username: cfg.SMS.Username,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
	}, logger)
	notifier := services.NewSMSNotifier(smsGateway, userRepo, cfg.Booking.Currency, logger)

	drafts := services.NewDraftPersistenceService(draftRepo, cfg.Booking.DraftTTL, logger)
	wizardStore := services.NewWizardStore(cfg.Booking.SessionTTL)
	sessions := services.NewBookingSessionService(wizardStore, drafts, routeRepo, services.WizardOptions{
		FleetAware: cfg.Booking.FleetSelection,
		MaxSeats:   cfg.Booking.MaxSeatsPerBooking,
	}, logger)
	fleetService := services.NewFleetAssignmentService(procedures, logger)
	seatService := services.NewSeatSelectionService(procedures, cfg.Booking.DefaultSeatCapacity, cfg.Booking.SeatLockMinutes, logger)
	submission := services.NewBookingSubmissionService(
		procedures,
		routeRepo,
		fleetService,
		drafts,
		wizardStore,
		notifier,
		cfg.Booking.DashboardURL,
		logger,
	)
	receiptService := services.NewReceiptService(receiptRepo, procedures, logger)
	receiptDocuments := services.NewReceiptDocumentService(cfg.Booking.Currency)
	seatFeed := services.NewSeatFeed()

	// Background jobs
	cronService := services.NewCronService(drafts, auditService, logger, refreshTokenRepo, adminRefreshTokenRepo, rateLimitService)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Seat changes from the database fan out to open seat streams
	listenCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	seatListener := database.NewSeatListener(cfg.Database.URL, cfg.Booking.SeatChannel, logger)
	go func() {
		if err := seatListener.Run(listenCtx, seatFeed.Publish); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Seat change listener stopped")
		}
	}()

	logger.Info("Services initialized")

	// Handlers
	authHandler := handlers.NewAuthHandler(passengerAuth, rateLimitService, auditService, drafts, cfg.Booking.LoginURL, logger)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuth, rateLimitService, auditService, logger)
	bookingHandler := handlers.NewBookingHandler(sessions, fleetService, seatService, submission, auditService, cfg.Booking.LoginURL, logger)
	seatStreamHandler := handlers.NewSeatStreamHandler(bookingHandler, seatFeed, logger)
	routeHandler := handlers.NewRouteHandler(routeRepo, fleetRepo, auditService, logger)
	receiptHandler := handlers.NewReceiptHandler(receiptService, receiptDocuments, auditService, logger)
	userBookingHandler := handlers.NewUserBookingHandler(bookingRepo, wizardStore, logger)
	adminHandler := handlers.NewAdminHandler(
		fleetRepo,
		bookingRepo,
		settingsRepo,
		analyticsRepo,
		procedures,
		sessions,
		cronService,
		auditService,
		cfg.Booking.Currency,
		logger,
	)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.BookingSessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.BookingSession(cfg.Server.Environment == "production"))

	router.GET("/health", healthCheckHandler(db))

	adminRoles := []string{models.RoleAdmin, models.RoleSuperAdmin, models.RoleBranchAdmin}

	v1 := router.Group("/api/v1")
	{
		// Public catalogue
		v1.GET("/routes", routeHandler.ListRoutes)
		v1.GET("/routes/:id", routeHandler.GetRoute)
		v1.GET("/branches", routeHandler.ListBranches)

		// Passenger authentication
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.OptionalAuth(jwtService), authHandler.Logout)
		}

		// Booking wizard, open to guests until confirmation
		booking := v1.Group("/booking")
		booking.Use(middleware.OptionalAuth(jwtService))
		{
			booking.POST("/session", bookingHandler.StartSession)
			booking.GET("/session", bookingHandler.GetSession)
			booking.PATCH("/session", bookingHandler.UpdateSession)
			booking.DELETE("/session", bookingHandler.ResetSession)
			booking.POST("/session/next", bookingHandler.Next)
			booking.POST("/session/back", bookingHandler.Back)
			booking.GET("/session/can-proceed/:step", bookingHandler.CanProceed)
			booking.GET("/fleet", bookingHandler.ListFleet)
			booking.POST("/fleet/assign", bookingHandler.AssignFleet)
			booking.GET("/seats", bookingHandler.GetSeats)
			booking.GET("/seats/stream", seatStreamHandler.Stream)
			booking.POST("/seats/:seat/toggle", bookingHandler.ToggleSeat)
			booking.POST("/confirm", bookingHandler.Confirm)
		}

		// Passenger routes (protected)
		passenger := v1.Group("")
		passenger.Use(middleware.AuthMiddleware(jwtService))
		{
			passenger.GET("/user/profile", authHandler.GetProfile)
			passenger.GET("/bookings", userBookingHandler.ListMyBookings)
			passenger.GET("/receipts/:id", receiptHandler.GetReceipt)
			passenger.GET("/receipts/:id/pdf", receiptHandler.DownloadReceipt)
		}

		// Admin authentication (public)
		adminAuthRoutes := v1.Group("/admin/auth")
		{
			adminAuthRoutes.POST("/login", adminAuthHandler.Login)
			adminAuthRoutes.POST("/refresh", adminAuthHandler.RefreshToken)
			adminAuthRoutes.POST("/logout", middleware.OptionalAuth(jwtService), adminAuthHandler.Logout)
		}

		// Admin back office
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(adminRoles...))
		{
			admin.GET("/profile", adminAuthHandler.GetProfile)
			admin.POST("/change-password", adminAuthHandler.ChangePassword)

			admins := admin.Group("/admins")
			admins.Use(middleware.RequireRole(models.RoleSuperAdmin))
			{
				admins.GET("", adminAuthHandler.ListAdmins)
				admins.POST("", adminAuthHandler.CreateAdmin)
				admins.POST("/:id/deactivate", adminAuthHandler.DeactivateAdmin)
			}

			admin.GET("/routes", routeHandler.ListRoutes)
			admin.POST("/routes", routeHandler.CreateRoute)
			admin.PUT("/routes/:id", routeHandler.UpdateRoute)
			admin.DELETE("/routes/:id", routeHandler.DeleteRoute)
			admin.GET("/routes/:id/pricing", routeHandler.GetRoutePricing)
			admin.PUT("/routes/:id/pricing", routeHandler.SetRoutePricing)

			admin.GET("/fleet", adminHandler.ListFleet)
			admin.GET("/fleet/:id", adminHandler.GetFleet)
			admin.POST("/fleet", adminHandler.CreateFleet)
			admin.PUT("/fleet/:id", adminHandler.UpdateFleet)
			admin.DELETE("/fleet/:id", adminHandler.DeactivateFleet)

			admin.GET("/receipts", receiptHandler.ListReceipts)
			admin.GET("/receipts/:id", receiptHandler.GetReceipt)
			admin.POST("/receipts/:id/verify", receiptHandler.VerifyReceipt)
			admin.POST("/receipts/:id/sign-off", receiptHandler.SignOffReceipt)

			admin.GET("/bookings", adminHandler.ListBookings)
			admin.GET("/bookings/:id", adminHandler.GetBooking)
			admin.POST("/seats/initialize", adminHandler.InitializeSeats)

			admin.GET("/settings", adminHandler.ListSettings)
			admin.GET("/settings/:key", adminHandler.GetSetting)
			admin.PUT("/settings/:key", adminHandler.UpdateSetting)

			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/cron/status", adminHandler.GetCronStatus)
			admin.POST("/cron/purge-drafts", adminHandler.PurgeDrafts)
		}
	}

	// Create HTTP server. No write timeout: seat streams stay open.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopListener()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
