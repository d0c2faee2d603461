package app

import (
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/modules/roadmap"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Roadmap  services.RoadmapService
	Merge    services.MergeService
	Progress services.ProgressService
	Resume   services.ResumeService
}

func wireServices(log *logger.Logger, cfg Config, store repos.Store, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	engine := roadmap.New(roadmap.UsecasesDeps{
		Log:           log.With("module", "roadmap"),
		Location:      cfg.ScheduleLocation,
		MaxDays:       cfg.ScheduleMaxDays,
		ScheduledTime: cfg.ScheduleStartTime,
	})

	var gen services.TextGenerator
	if clients.OpenAI != nil {
		gen = clients.OpenAI
	}

	return Services{
		Auth:     services.NewAuthService(log, store.Users, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Roadmap:  services.NewRoadmapService(log, store.Roadmaps),
		Merge:    services.NewMergeService(log, store.Roadmaps, store.MergedRoadmaps, engine, clients.Lineage, clients.EventBus, metrics, cfg.MergeMaxSources),
		Progress: services.NewProgressService(log, store.Roadmaps, store.MergedRoadmaps, store.Progress, clients.EventBus, metrics),
		Resume:   services.NewResumeService(log, store.Roadmaps, store.MergedRoadmaps, store.Progress, store.Resumes, gen, clients.EventBus, metrics),
	}
}
