package app

import (
	httpH "github.com/premsagarmanikyala/mantrix-ai/internal/http/handlers"
	httpMW "github.com/premsagarmanikyala/mantrix-ai/internal/http/middleware"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Roadmap  *httpH.RoadmapHandler
	Merge    *httpH.MergeHandler
	Progress *httpH.ProgressHandler
	Resume   *httpH.ResumeHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(log, services.Auth),
		Roadmap:  httpH.NewRoadmapHandler(log, services.Roadmap),
		Merge:    httpH.NewMergeHandler(log, services.Merge),
		Progress: httpH.NewProgressHandler(log, services.Progress),
		Resume:   httpH.NewResumeHandler(log, services.Resume),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}
