package app

import (
	"github.com/premsagarmanikyala/mantrix-ai/internal/http"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) http.RouterConfig {
	return http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.Otel.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		RequestTimeout:  cfg.RequestTimeout,
		TracingEnabled:  cfg.Otel.Enabled,
		Metrics:         metrics,
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  middleware.Auth,
		RoadmapHandler:  handlers.Roadmap,
		MergeHandler:    handlers.Merge,
		ProgressHandler: handlers.Progress,
		ResumeHandler:   handlers.Resume,
		HealthHandler:   handlers.Health,
	}
}
