package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tutorhive/booking-api/api/swagger"
	"github.com/tutorhive/booking-api/internal/handler"
	"github.com/tutorhive/booking-api/internal/middleware"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/repository"
	"github.com/tutorhive/booking-api/internal/service"
	"github.com/tutorhive/booking-api/pkg/cache"
	"github.com/tutorhive/booking-api/pkg/config"
	"github.com/tutorhive/booking-api/pkg/database"
	"github.com/tutorhive/booking-api/pkg/logger"
	corsmiddleware "github.com/tutorhive/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutorhive/booking-api/pkg/middleware/requestid"
)

// @title TutorHive Booking API
// @version 1.0.0
// @description Tutor availability, slot booking and group batch scheduling
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid booking timezone", "timezone", cfg.Booking.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, availability cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	service.RegisterCustomValidators(validate)

	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr, metricsSvc)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "tutorhive-booking-api",
	})
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, cacheRepo, validate, logr,
		service.AvailabilityConfig{CacheTTL: cfg.Availability.CacheTTL})
	slotSvc := service.NewSlotService(slotRepo, validate, logr, location)
	bookingSvc := service.NewBookingService(bookingRepo, slotRepo, validate, logr, cfg.Booking)
	batchSvc := service.NewBatchService(batchRepo, validate, logr, cfg.Batches, cfg.Booking, location)
	exportSvc := service.NewExportService(batchRepo, logr, location, cfg.Export.Enabled)

	authHandler := handler.NewAuthHandler(authSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	slotHandler := handler.NewSlotHandler(slotSvc, metricsSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, metricsSvc)
	batchHandler := handler.NewBatchHandler(batchSvc, exportSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

		tutors := authed.Group("/tutors/:id")
		{
			tutors.GET("/availability", availabilityHandler.Get)

			tutorOnly := tutors.Group("")
			tutorOnly.Use(middleware.RequireRoles(models.RoleAdmin, "SELF"))
			{
				tutorOnly.PUT("/availability", availabilityHandler.Update)
				tutorOnly.DELETE("/availability", availabilityHandler.Clear)
				tutorOnly.POST("/availability/month", availabilityHandler.SelectMonth)
				tutorOnly.POST("/availability/:date", availabilityHandler.Toggle)
				tutorOnly.POST("/slots", slotHandler.Submit)
				tutorOnly.DELETE("/slots/:slotId", slotHandler.Delete)
			}
		}

		authed.POST("/slots/build", slotHandler.Build)
		authed.GET("/slots", slotHandler.List)

		bookings := authed.Group("/bookings")
		{
			bookings.POST("", middleware.RequireRoles(models.RoleStudent), bookingHandler.Create)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:id/join-window", bookingHandler.JoinWindow)
			bookings.DELETE("/:id", bookingHandler.Cancel)
			bookings.POST("/:id/complete", middleware.RequireRoles(models.RoleTutor, models.RoleAdmin), bookingHandler.Complete)
		}

		batches := authed.Group("/batches")
		{
			batches.POST("/preview", middleware.RequireRoles(models.RoleTutor, models.RoleAdmin), batchHandler.Preview)
			batches.POST("", middleware.RequireRoles(models.RoleTutor, models.RoleAdmin), batchHandler.Create)
			batches.GET("", batchHandler.List)
			batches.GET("/:id", batchHandler.Get)
			batches.POST("/:id/enroll", middleware.RequireRoles(models.RoleStudent), batchHandler.Enroll)
			batches.GET("/:id/schedule.csv", batchHandler.ExportCSV)
			batches.GET("/:id/schedule.pdf", batchHandler.ExportPDF)
		}

		authed.GET("/batch-sessions/:sessionId/join-window", batchHandler.SessionJoinWindow)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", cfg.Booking.Timezone)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
