package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/hiremind/backend/agent"
	"github.com/hiremind/backend/auth"
	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/mcp"
	"github.com/hiremind/backend/metrics"
	"github.com/hiremind/backend/storage"
)

// RouterDeps are the wired services the HTTP API is built from
type RouterDeps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Manager
	Store      storage.Store
	Files      storage.FileStore
	Source     ListingSource
	Agent      *agent.JobAgent
	Generators GeneratorProvider
	Google     GoogleVerifier
	JWT        *auth.JWTService
	Cipher     *auth.KeyCipher
	MCP        *mcp.Server
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d RouterDeps) *gin.Engine {
	cfg := d.Config
	verbose := !cfg.IsProduction()

	resolver := NewGeneratorResolver(d.Store, d.Cipher, d.Generators, d.Logger.Named("generators"))
	authHandler := NewAuthHandler(d.Store, d.JWT, d.Google, d.Cipher, d.Logger, verbose)
	resumeHandler := NewResumeHandler(d.Store, d.Files, resolver, cfg.MaxUploadBytes(), d.Logger, verbose)
	jobsHandler := NewJobsHandler(d.Source, d.Agent, d.Store, resolver, d.Metrics, d.Logger, verbose)
	adminHandler := NewAdminHandler(storage.NewFileJanitor(d.Files, d.Store, d.Logger), d.Logger, verbose)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(d.Logger, d.Metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", HealthCheck)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	requireAuth := auth.AuthMiddleware(d.JWT)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/google", authHandler.GoogleLogin)
			authGroup.POST("/refresh", requireAuth, authHandler.RefreshToken)
			authGroup.GET("/profile", requireAuth, authHandler.GetProfile)
			authGroup.PUT("/profile", requireAuth, authHandler.UpdateProfile)
		}

		resumeGroup := api.Group("/resume", requireAuth)
		{
			resumeGroup.POST("/upload", resumeHandler.Upload)
			resumeGroup.GET("", resumeHandler.List)
			resumeGroup.GET("/:id", resumeHandler.Get)
			resumeGroup.DELETE("/:id", resumeHandler.Delete)
			resumeGroup.POST("/:id/reparse", resumeHandler.Reparse)
		}

		jobsGroup := api.Group("/jobs", requireAuth)
		{
			jobsGroup.GET("/search", jobsHandler.Search)
			jobsGroup.GET("/recommendations", jobsHandler.Recommendations)
			jobsGroup.GET("/recommendations/:resumeId", jobsHandler.Recommendations)
			jobsGroup.GET("/:jobId/details", jobsHandler.Details)
		}

		adminGroup := api.Group("/admin", requireAuth, auth.RequireAdmin(cfg))
		{
			adminGroup.GET("/files/stats", adminHandler.FileStats)
			adminGroup.POST("/files/cleanup", adminHandler.CleanupFiles)
		}

		if d.MCP != nil {
			d.MCP.RegisterRoutes(api.Group("", requireAuth))
		}
	}

	return router
}
