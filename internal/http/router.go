package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/premsagarmanikyala/mantrix-ai/internal/http/handlers"
	httpMW "github.com/premsagarmanikyala/mantrix-ai/internal/http/middleware"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration
	TracingEnabled bool
	Metrics        *observability.Metrics

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	RoadmapHandler  *httpH.RoadmapHandler
	MergeHandler    *httpH.MergeHandler
	ProgressHandler *httpH.ProgressHandler
	ResumeHandler   *httpH.ResumeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := httpH.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Timeout(cfg.RequestTimeout))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
		if cfg.MergeHandler != nil {
			api.GET("/roadmap/merge/health", cfg.MergeHandler.Health)
		}
	}

	protected := api.Group("")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/auth/me", cfg.AuthHandler.Me)
		}

		// Roadmaps
		if cfg.RoadmapHandler != nil {
			protected.GET("/roadmap", cfg.RoadmapHandler.List)
			protected.POST("/roadmap", cfg.RoadmapHandler.Create)
			protected.GET("/roadmap/mergeable", cfg.RoadmapHandler.ListMergeable)
			protected.GET("/roadmap/:id", cfg.RoadmapHandler.Get)
			protected.PUT("/roadmap/:id", cfg.RoadmapHandler.Replace)
			protected.DELETE("/roadmap/:id", cfg.RoadmapHandler.Delete)
		}

		// Merge
		if cfg.MergeHandler != nil {
			protected.POST("/roadmap/merge/preview", cfg.MergeHandler.Preview)
			protected.POST("/roadmap/merge", cfg.MergeHandler.Merge)
			protected.GET("/roadmap/merged", cfg.MergeHandler.ListMerged)
			protected.GET("/roadmap/merged/:id", cfg.MergeHandler.GetMerged)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/progress/complete", cfg.ProgressHandler.Complete)
			protected.GET("/progress/summary", cfg.ProgressHandler.Summary)
			protected.GET("/progress", cfg.ProgressHandler.Overview)
		}

		// Resume
		if cfg.ResumeHandler != nil {
			protected.POST("/resume/generate", cfg.ResumeHandler.Generate)
			protected.GET("/resume", cfg.ResumeHandler.List)
		}
	}

	return r, nil
}
