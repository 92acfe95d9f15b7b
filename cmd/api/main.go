package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bittutor/bittutor-api/api/swagger"
	"github.com/bittutor/bittutor-api/internal/handler"
	"github.com/bittutor/bittutor-api/internal/middleware"
	"github.com/bittutor/bittutor-api/internal/repository"
	"github.com/bittutor/bittutor-api/internal/service"
	"github.com/bittutor/bittutor-api/pkg/cache"
	"github.com/bittutor/bittutor-api/pkg/certificate"
	"github.com/bittutor/bittutor-api/pkg/config"
	"github.com/bittutor/bittutor-api/pkg/database"
	"github.com/bittutor/bittutor-api/pkg/export"
	"github.com/bittutor/bittutor-api/pkg/logger"
	"github.com/bittutor/bittutor-api/pkg/mailer"
	"github.com/bittutor/bittutor-api/pkg/media"
	corsmiddleware "github.com/bittutor/bittutor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bittutor/bittutor-api/pkg/middleware/requestid"
)

// @title BitTutor API
// @version 1.0.0
// @description Persistence and business-rule layer of the BitTutor course platform
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store, err := media.NewStore(cfg.Media.Root)
	if err != nil {
		logr.Fatal("failed to prepare media root", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		redisClient = nil
	}

	var mail mailer.Mailer
	if cfg.Mail.Backend == "sendgrid" && cfg.Mail.SendGridKey != "" {
		mail = mailer.NewSendGrid(cfg.Mail.SendGridKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	} else {
		mail = mailer.NewConsole(logr)
	}

	// repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// services
	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	userSvc := service.NewUserService(userRepo, courseRepo, store, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, courseRepo, store, validate, logr)
	catalogSvc := service.NewCatalogService(catalogRepo, userRepo, categoryRepo, redisClient, cfg.Catalog, metricsSvc, logr)
	courseSvc := service.NewCourseService(courseRepo, categoryRepo, store, catalogSvc, validate, logr)
	resourceSvc := service.NewResourceService(resourceRepo, membershipRepo, store, validate, logr)
	membershipSvc := service.NewMembershipService(membershipRepo, reviewRepo, courseRepo, catalogSvc, validate, logr)
	reportSvc := service.NewReportService(courseRepo, membershipRepo, mail, store, catalogSvc, metricsSvc, logr)
	quizSvc := service.NewQuizService(quizRepo, courseRepo, validate, logr)
	certificateSvc := service.NewCertificateService(membershipRepo, userRepo, courseRepo,
		certificate.NewRenderer(cfg.Certificates.TemplatePath), store, metricsSvc, logr)
	exportSvc := service.NewExportService(membershipRepo, courseRepo,
		export.NewCSVExporter(), export.NewPDFExporter(), store, metricsSvc, cfg.Exports, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Exports.Enabled {
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	// handlers
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc, catalogSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc, catalogSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, resourceSvc, membershipSvc, reportSvc, certificateSvc)
	quizHandler := handler.NewQuizHandler(quizSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/auth/login", authHandler.Login)
	r.POST("/users", userHandler.Register)

	auth := r.Group("/", middleware.JWT(authSvc))
	{
		auth.GET("/users/:id", userHandler.Get)
		auth.GET("/users/:id/image", userHandler.Image)
		auth.PUT("/users/me", userHandler.Update)
		auth.PUT("/users/me/password", userHandler.ChangePassword)
		auth.DELETE("/users/me", userHandler.Delete)
		auth.PUT("/users/me/image", userHandler.PutImage)
		auth.GET("/users/me/wishlist", userHandler.WishList)
		auth.GET("/users/:id/courses", courseHandler.Taught)

		auth.POST("/categories", categoryHandler.Create)
		auth.GET("/categories", categoryHandler.List)
		auth.GET("/categories/:name", categoryHandler.Get)
		auth.DELETE("/categories/:name", categoryHandler.Delete)
		auth.GET("/categories/:name/image", categoryHandler.Image)
		auth.PUT("/categories/:name/image", categoryHandler.PutImage)
		auth.GET("/categories/:name/offer", categoryHandler.Offer)

		auth.POST("/courses", courseHandler.Create)
		auth.GET("/courses/:id", courseHandler.Get)
		auth.GET("/courses/:id/teacher", courseHandler.Teacher)
		auth.DELETE("/courses/:id", courseHandler.Delete)
		auth.GET("/courses/:id/image", courseHandler.Image)
		auth.PUT("/courses/:id/image", courseHandler.PutImage)
		auth.POST("/courses/:id/resources", courseHandler.AddResource)
		auth.GET("/courses/:id/resources", courseHandler.ListResources)
		auth.GET("/courses/:id/resources/:name", courseHandler.GetResource)
		auth.DELETE("/courses/:id/resources/:name", courseHandler.DeleteResource)
		auth.POST("/courses/:id/subscribe", courseHandler.Subscribe)
		auth.DELETE("/courses/:id/subscribe", courseHandler.Unsubscribe)
		auth.POST("/courses/:id/wish", courseHandler.Wish)
		auth.DELETE("/courses/:id/wish", courseHandler.Unwish)
		auth.POST("/courses/:id/ban", courseHandler.Ban)
		auth.DELETE("/courses/:id/ban", courseHandler.Unban)
		auth.POST("/courses/:id/complete", courseHandler.Complete)
		auth.POST("/courses/:id/reviews", courseHandler.SubmitReview)
		auth.GET("/courses/:id/reviews", courseHandler.ListReviews)
		auth.POST("/courses/:id/report", courseHandler.Report)
		auth.GET("/courses/:id/certificate", courseHandler.Certificate)
		auth.POST("/courses/:id/exports", exportHandler.Enqueue)
		auth.GET("/exports/:file", exportHandler.Download)

		auth.POST("/courses/:id/quizzes", quizHandler.Create)
		auth.GET("/courses/:id/quizzes", quizHandler.Available)
		auth.POST("/quizzes/:quizId/questions", quizHandler.AddQuestion)
		auth.GET("/quizzes/:quizId/questions", quizHandler.Questions)
		auth.POST("/quizzes/:quizId/results", quizHandler.SubmitResult)
		auth.GET("/quizzes/:quizId/results", quizHandler.Result)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
