package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/staff-ops-api/api/swagger"
	"github.com/noah-isme/staff-ops-api/internal/handler"
	"github.com/noah-isme/staff-ops-api/internal/middleware"
	"github.com/noah-isme/staff-ops-api/internal/models"
	"github.com/noah-isme/staff-ops-api/internal/repository"
	"github.com/noah-isme/staff-ops-api/internal/service"
	"github.com/noah-isme/staff-ops-api/pkg/cache"
	"github.com/noah-isme/staff-ops-api/pkg/config"
	"github.com/noah-isme/staff-ops-api/pkg/database"
	"github.com/noah-isme/staff-ops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/staff-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/staff-ops-api/pkg/middleware/requestid"
	"github.com/noah-isme/staff-ops-api/pkg/push"
	"github.com/noah-isme/staff-ops-api/pkg/realtime"
)

// @title Staff Ops API
// @version 1.0.0
// @description Staff attendance, leave and notification backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	profileRepo := repository.NewProfileRepository(db)
	qrRepo := repository.NewQrCodeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	broker := realtime.NewBroker(redisClient, "staff-ops", logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var relay *service.PushRelay
	var relayEnqueuer interface {
		Enqueue(models.Notification)
	}
	if cfg.Push.Enabled {
		pushClient := push.NewClient(cfg.Push.GatewayURL, cfg.Push.Timeout)
		relay = service.NewPushRelay(notificationRepo, pushClient, cfg.Push, logr)
		relay.Start(rootCtx)
		defer relay.Stop()
		relayEnqueuer = relay
	}

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(profileRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	qrService := service.NewQrCodeService(qrRepo, nil, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, profileRepo, logr)
	notificationService := service.NewNotificationService(
		notificationRepo, cacheRepo, broker, relayEnqueuer,
		cfg.Notifications.UnreadCacheTTL, nil, logr,
	)
	leaveService := service.NewLeaveService(leaveRepo, profileRepo, notificationService, nil, logr)
	profileService := service.NewProfileService(profileRepo, nil, logr)

	authHandler := handler.NewAuthHandler(authService)
	qrHandler := handler.NewQrCodeHandler(qrService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, metricsService)
	leaveHandler := handler.NewLeaveHandler(leaveService)
	notificationHandler := handler.NewNotificationHandler(notificationService, cfg.Notifications.HeartbeatEvery)
	profileHandler := handler.NewProfileHandler(profileService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.PUT("/auth/password", authHandler.ChangePassword)

		authed.POST("/attendance/scan", attendanceHandler.RecordScan)
		authed.GET("/attendance", attendanceHandler.List)

		authed.POST("/leaves", leaveHandler.Submit)
		authed.GET("/leaves", leaveHandler.ListMine)

		authed.GET("/notifications", notificationHandler.List)
		authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authed.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		authed.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authed.DELETE("/notifications/:id", notificationHandler.Delete)
		authed.PUT("/notifications/push-token", notificationHandler.RegisterPushToken)
		if cfg.Notifications.StreamEnabled {
			authed.GET("/notifications/stream", notificationHandler.Stream)
		}

		authed.GET("/qrcodes/:date", qrHandler.Current)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/qrcodes", qrHandler.Issue)
		admin.DELETE("/qrcodes/:date", qrHandler.Revoke)

		admin.POST("/leaves", leaveHandler.SubmitAsAdmin)
		admin.GET("/leaves", leaveHandler.ListForAdmin)
		admin.PUT("/leaves/:id/decision", leaveHandler.Decide)

		admin.GET("/profiles", profileHandler.List)
		admin.POST("/profiles", profileHandler.Create)
		admin.GET("/profiles/:id", profileHandler.Get)
		admin.PUT("/profiles/:id/active", profileHandler.SetActive)
		admin.DELETE("/profiles/:id", profileHandler.Delete)

		if cfg.Exports.Enabled {
			admin.GET("/attendance/export", attendanceHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
