// Package main runs the training attendance HTTP server with graceful
// shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/summit-delegates/backend/config"
	"github.com/summit-delegates/backend/internal/attendance"
	"github.com/summit-delegates/backend/internal/auth"
	"github.com/summit-delegates/backend/internal/delegates"
	"github.com/summit-delegates/backend/internal/middleware"
	"github.com/summit-delegates/backend/internal/models"
	"github.com/summit-delegates/backend/internal/trainings"
	"github.com/summit-delegates/backend/internal/users"
	"github.com/summit-delegates/backend/pkg/database"
	"github.com/summit-delegates/backend/pkg/redis"
	"github.com/summit-delegates/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis backs the token denylist; without it logout is a no-op.
	var denylist *auth.Denylist
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("token denylist disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			denylist = auth.NewDenylist(rdb.Client)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userRepo := users.NewRepository(pool)
	trainingRepo := trainings.NewRepository(pool)
	delegateRepo := delegates.NewRepository(pool)
	attendanceRepo := attendance.NewRepository(pool)

	authService := auth.NewService(jwtService, userRepo, denylist, logger)
	attendanceService := attendance.NewService(attendanceRepo, trainingRepo, userRepo)

	authHandler := auth.NewHandler(userRepo, jwtService, authService, logger)
	userHandler := users.NewHandler(userRepo, logger)
	trainingHandler := trainings.NewHandler(trainingRepo, logger)
	delegateHandler := delegates.NewHandler(delegateRepo, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/", func(c *gin.Context) {
		response.OK(c, gin.H{"message": "Welcome to the Training Management System API"})
	})
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	adminOrSuper := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", middleware.Authenticate(authService), authHandler.Me)
		authGroup.POST("/logout", middleware.Authenticate(authService), authHandler.Logout)
	}

	userGroup := api.Group("/users", middleware.Authenticate(authService))
	{
		userGroup.GET("", adminOnly, userHandler.List)
		userGroup.GET("/:id", adminOnly, userHandler.GetByID)
		userGroup.POST("", adminOnly, userHandler.Create)
		userGroup.PUT("/:id", adminOnly, userHandler.Update)
		userGroup.DELETE("/:id", adminOnly, userHandler.Delete)
	}

	trainingGroup := api.Group("/trainings", middleware.Authenticate(authService))
	{
		trainingGroup.GET("", trainingHandler.List)
		trainingGroup.GET("/:id", trainingHandler.GetByID)
		trainingGroup.POST("", adminOrSuper, trainingHandler.Create)
		trainingGroup.PUT("/:id", adminOrSuper, trainingHandler.Update)
		trainingGroup.DELETE("/:id", adminOrSuper, trainingHandler.Delete)
	}

	delegateGroup := api.Group("/delegates", middleware.Authenticate(authService))
	{
		delegateGroup.GET("", delegateHandler.List)
		delegateGroup.GET("/:id", delegateHandler.GetByID)
		delegateGroup.GET("/qr/:delegateId", adminOrSuper, delegateHandler.GetFromQR)
		delegateGroup.POST("", adminOrSuper, delegateHandler.Create)
		delegateGroup.PUT("/:id", adminOrSuper, delegateHandler.Update)
		delegateGroup.DELETE("/:id", adminOrSuper, delegateHandler.Delete)
		delegateGroup.POST("/:id/trainings", adminOrSuper, delegateHandler.AssignTrainings)
		delegateGroup.POST("/:id/banquet-seating", adminOrSuper, delegateHandler.BanquetSeating)
		delegateGroup.POST("/import", adminOrSuper, delegateHandler.Import)
	}

	attendanceGroup := api.Group("/attendance", middleware.Authenticate(authService))
	{
		attendanceGroup.GET("/training/:trainingId", attendanceHandler.TrainingAttendance)
		attendanceGroup.GET("/user/:userId", attendanceHandler.UserAttendance)
		attendanceGroup.POST("/check-in/:trainingId", middleware.RequireRole(models.RoleDelegate), attendanceHandler.CheckIn)
		attendanceGroup.GET("/stats/:trainingId", adminOnly, attendanceHandler.Stats)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
