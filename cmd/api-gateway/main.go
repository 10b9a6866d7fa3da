package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/scholarhub/college-review-api/api/swagger"
	"github.com/scholarhub/college-review-api/internal/handler"
	"github.com/scholarhub/college-review-api/internal/middleware"
	"github.com/scholarhub/college-review-api/internal/models"
	"github.com/scholarhub/college-review-api/internal/repository"
	"github.com/scholarhub/college-review-api/internal/service"
	"github.com/scholarhub/college-review-api/pkg/cache"
	"github.com/scholarhub/college-review-api/pkg/config"
	"github.com/scholarhub/college-review-api/pkg/database"
	"github.com/scholarhub/college-review-api/pkg/logger"
	corsmiddleware "github.com/scholarhub/college-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/scholarhub/college-review-api/pkg/middleware/requestid"
)

// @title College Review API
// @version 1.0.0
// @description Scholarship college review, ranking and quota distribution service
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

	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, ranking cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	rankingRepo := repository.NewRankingRepository(db)
	scholarshipRepo := repository.NewScholarshipRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, auditRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "college-review-api",
		Audience:           []string{"scholarhub"},
	})

	var rankingSvc *service.RankingService
	if cacheRepo != nil {
		rankingSvc = service.NewRankingService(rankingRepo, scholarshipRepo, cacheRepo, auditRepo, nil, logr, cfg.Ranking.CacheTTL)
	} else {
		rankingSvc = service.NewRankingService(rankingRepo, scholarshipRepo, nil, auditRepo, nil, logr, cfg.Ranking.CacheTTL)
	}
	rankingSvc.SetMetrics(metricsSvc)

	reviewSvc := service.NewReviewService(applicationRepo, rankingRepo, rankingSvc, auditRepo, nil, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	var rankingHandler *handler.RankingHandler
	if cfg.Exports.Enabled {
		rankingHandler = handler.NewRankingHandler(rankingSvc, service.NewExportService(rankingSvc))
	} else {
		rankingHandler = handler.NewRankingHandler(rankingSvc, nil)
	}
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	readiness := []handler.ReadinessCheck{
		{Name: "postgres", Check: db.PingContext},
	}
	if redisClient != nil {
		readiness = append(readiness, handler.ReadinessCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
	}
	healthHandler := handler.NewHealthHandler(readiness...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Live)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	adminRoles := []models.UserRole{models.RoleSuperAdmin, models.RoleCollegeAdmin}
	reviewRoles := []models.UserRole{models.RoleSuperAdmin, models.RoleCollegeAdmin, models.RoleProfessor}

	cr := api.Group("/college-review", middleware.JWT(authSvc))

	rankings := cr.Group("/rankings")
	rankings.GET("", middleware.RBAC(reviewRoles...), rankingHandler.List)
	rankings.GET("/:id", middleware.RBAC(reviewRoles...), rankingHandler.Get)
	rankings.GET("/:id/export", middleware.RBAC(reviewRoles...), rankingHandler.Export)
	rankings.POST("", middleware.RBAC(adminRoles...), rankingHandler.Create)
	rankings.PUT("/:id/order", middleware.RBAC(adminRoles...), rankingHandler.Reorder)
	rankings.POST("/:id/execute-matrix-distribution", middleware.RBAC(adminRoles...), rankingHandler.Distribute)
	rankings.POST("/:id/finalize", middleware.RBAC(adminRoles...), rankingHandler.Finalize)
	rankings.POST("/:id/unfinalize", middleware.RBAC(adminRoles...), rankingHandler.Unfinalize)
	rankings.DELETE("/:id", middleware.RBAC(adminRoles...), rankingHandler.Delete)

	applications := cr.Group("/applications")
	applications.GET("", middleware.RBAC(reviewRoles...), applicationHandler.List)
	applications.GET("/:id", middleware.RBAC(reviewRoles...), applicationHandler.Get)
	applications.POST("/:id/review", middleware.RBAC(reviewRoles...), reviewHandler.Submit)

	// Legacy route kept for clients that predate the college-review prefix.
	reviews := api.Group("/reviews", middleware.JWT(authSvc))
	reviews.POST("/applications/:id/review", middleware.RBAC(reviewRoles...), reviewHandler.Submit)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
