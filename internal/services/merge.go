package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/graph"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/modules/roadmap"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

const (
	ScheduleModeNone   = "none"
	ScheduleModeAuto   = "auto"
	ScheduleModeManual = "manual"

	DefaultDailyStudyHours = 1.0
	MaxDailyStudyHours     = 8.0
	DefaultMaxMergeSources = 10

	resolveConcurrency = 4
)

var ScheduleModes = []string{ScheduleModeNone, ScheduleModeAuto, ScheduleModeManual}

func ValidScheduleMode(mode string) bool {
	for _, m := range ScheduleModes {
		if m == mode {
			return true
		}
	}
	return false
}

type MergeRequest struct {
	RoadmapIDs        []string
	ScheduleMode      string
	CalendarRequested bool
	// DailyStudyHours nil means DefaultDailyStudyHours.
	DailyStudyHours *float64
}

type MergePreviewResult struct {
	Preview       domain.MergePreview
	Statistics    domain.MergeStatistics
	UnresolvedIDs []string
}

type MergeOutcome struct {
	MergedRoadmap    *domain.MergedRoadmap
	Statistics       domain.MergeStatistics
	SourceCount      int
	ScheduleMode     string
	CalendarEnabled  bool
	UnresolvedIDs    []string
	UnscheduledUnits int
}

type MergeHealth struct {
	Status             string          `json:"status"`
	MaxSources         int             `json:"maxSources"`
	MaxDailyStudyHours float64         `json:"maxDailyStudyHours"`
	ScheduleModes      []string        `json:"scheduleModes"`
	Features           map[string]bool `json:"features"`
}

type MergeService interface {
	Preview(ctx context.Context, ownerID string, roadmapIDs []string) (*MergePreviewResult, error)
	Merge(ctx context.Context, ownerID string, req MergeRequest) (*MergeOutcome, error)
	ListMerged(ctx context.Context, ownerID string) ([]*domain.MergedRoadmap, error)
	GetMerged(ctx context.Context, ownerID, id string) (*domain.MergedRoadmap, error)
	Health() MergeHealth
}

type mergeService struct {
	log        *logger.Logger
	roadmaps   repos.RoadmapRepo
	merged     repos.MergedRoadmapRepo
	engine     roadmap.Usecases
	lineage    graph.LineageStore
	events     redis.EventBus
	metrics    *observability.Metrics
	maxSources int
}

// NewMergeService wires the orchestrator. lineage, events and metrics may be nil.
func NewMergeService(
	log *logger.Logger,
	roadmaps repos.RoadmapRepo,
	merged repos.MergedRoadmapRepo,
	engine roadmap.Usecases,
	lineage graph.LineageStore,
	events redis.EventBus,
	metrics *observability.Metrics,
	maxSources int,
) MergeService {
	serviceLog := log.With("service", "MergeService")
	if maxSources <= 0 {
		maxSources = DefaultMaxMergeSources
	}
	return &mergeService{
		log:        serviceLog,
		roadmaps:   roadmaps,
		merged:     merged,
		engine:     engine.WithLog(serviceLog),
		lineage:    lineage,
		events:     events,
		metrics:    metrics,
		maxSources: maxSources,
	}
}

func (s *mergeService) Health() MergeHealth {
	return MergeHealth{
		Status:             "healthy",
		MaxSources:         s.maxSources,
		MaxDailyStudyHours: MaxDailyStudyHours,
		ScheduleModes:      append([]string(nil), ScheduleModes...),
		Features: map[string]bool{
			"preview":  true,
			"calendar": true,
			"lineage":  s.lineage != nil,
			"events":   s.events != nil,
		},
	}
}

func (s *mergeService) Preview(ctx context.Context, ownerID string, roadmapIDs []string) (res *MergePreviewResult, err error) {
	ctx, span := startSpan(ctx, "MergeService.Preview")
	defer func() { endSpan(span, err) }()

	if err := s.checkSourceCount(roadmapIDs); err != nil {
		return nil, err
	}
	sources, unresolved, err := s.resolve(ctx, ownerID, roadmapIDs)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("merge.sources", len(sources)), attribute.Int("merge.unresolved", len(unresolved)))
	if len(sources) < 2 {
		return nil, apperr.ErrInsufficientSources
	}
	out := s.engine.Preview(sources)
	return &MergePreviewResult{
		Preview:       out.Preview,
		Statistics:    out.Statistics,
		UnresolvedIDs: unresolved,
	}, nil
}

func (s *mergeService) Merge(ctx context.Context, ownerID string, req MergeRequest) (outcome *MergeOutcome, err error) {
	ctx, span := startSpan(ctx, "MergeService.Merge")
	mode := strings.ToLower(strings.TrimSpace(req.ScheduleMode))
	if mode == "" {
		mode = ScheduleModeNone
	}
	defer func() {
		endSpan(span, err)
		if err != nil {
			s.metrics.ObserveMerge(mode, mergeOutcomeLabel(err), 0)
		}
	}()

	if !ValidScheduleMode(mode) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidScheduleMode, req.ScheduleMode)
	}
	hours := DefaultDailyStudyHours
	if req.DailyStudyHours != nil {
		hours = *req.DailyStudyHours
		if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 || hours > MaxDailyStudyHours {
			return nil, fmt.Errorf("%w: got %v", apperr.ErrInvalidScheduleParameter, hours)
		}
	}
	if err := s.checkSourceCount(req.RoadmapIDs); err != nil {
		return nil, err
	}

	sources, unresolved, err := s.resolve(ctx, ownerID, req.RoadmapIDs)
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		s.log.Info("merge sources unresolved", "owner_id", ownerID, "unresolved", unresolved)
	}
	if len(sources) < 2 {
		return nil, apperr.ErrInsufficientSources
	}

	res := s.engine.Preview(sources)
	row := &domain.MergedRoadmap{
		Title:                    res.Preview.Title,
		Description:              res.Preview.Description,
		EstimatedDurationSeconds: res.Preview.EstimatedDurationSeconds,
		Branches:                 res.Preview.Branches,
		MergedFromRoadmapIDs:     sourceIDs(sources),
		ScheduleMode:             mode,
		OwnerID:                  ownerID,
	}

	unscheduled := 0
	calendarEnabled := mode == ScheduleModeAuto && req.CalendarRequested
	if calendarEnabled {
		sched, err := s.engine.Schedule(res.Preview, hours)
		if err != nil {
			return nil, err
		}
		row.Calendar = datatypes.NewJSONType(sched.Calendar)
		row.DailyStudyHours = hours
		unscheduled = len(sched.Unscheduled)
		s.metrics.ObserveCalendar(sched.StudyDays, countScheduled(sched.Calendar), unscheduled)
	}

	created, err := s.merged.Create(dbc(ctx), row)
	if err != nil {
		s.log.Error("merged roadmap write failed", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("persist merged roadmap: %w", err)
	}
	span.SetAttributes(
		attribute.String("merge.id", created.ID),
		attribute.Int("merge.sources", len(sources)),
		attribute.Int("merge.efficiency_gain", res.Statistics.EfficiencyGainPercent),
		attribute.Bool("merge.calendar", calendarEnabled),
	)
	s.metrics.ObserveMerge(mode, "ok", res.Statistics.EfficiencyGainPercent)

	if s.lineage != nil {
		if lerr := s.lineage.RecordMerge(ctx, created, sources); lerr != nil {
			s.log.Warn("merge lineage write failed", "merged_id", created.ID, "error", lerr)
		}
	}
	publish(ctx, s.log, s.events, redis.Event{
		Type:     redis.EventRoadmapMerged,
		OwnerID:  ownerID,
		EntityID: created.ID,
		Data: map[string]any{
			"source_count":    len(sources),
			"efficiency_gain": res.Statistics.EfficiencyGainPercent,
			"calendar":        calendarEnabled,
		},
	})

	s.log.Info("roadmaps merged",
		"merged_id", created.ID,
		"owner_id", ownerID,
		"source_count", len(sources),
		"final_branches", res.Statistics.FinalBranchCount,
		"efficiency_gain", res.Statistics.EfficiencyGainPercent,
	)
	return &MergeOutcome{
		MergedRoadmap:    created,
		Statistics:       res.Statistics,
		SourceCount:      len(sources),
		ScheduleMode:     mode,
		CalendarEnabled:  calendarEnabled,
		UnresolvedIDs:    unresolved,
		UnscheduledUnits: unscheduled,
	}, nil
}

func (s *mergeService) ListMerged(ctx context.Context, ownerID string) ([]*domain.MergedRoadmap, error) {
	rows, err := s.merged.ListByOwner(dbc(ctx), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list merged roadmaps: %w", err)
	}
	return rows, nil
}

func (s *mergeService) GetMerged(ctx context.Context, ownerID, id string) (*domain.MergedRoadmap, error) {
	row, err := s.merged.GetByID(dbc(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get merged roadmap: %w", err)
	}
	if row == nil || row.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	return row, nil
}

func (s *mergeService) checkSourceCount(ids []string) error {
	if len(ids) < 2 {
		return apperr.ErrInsufficientSources
	}
	if len(ids) > s.maxSources {
		return fmt.Errorf("%w: max %d", apperr.ErrTooManySources, s.maxSources)
	}
	return nil
}

// resolve looks ids up concurrently and returns the found roadmaps in request order.
// Missing ids, blank ids and roadmaps owned by someone else are reported as unresolved.
func (s *mergeService) resolve(ctx context.Context, ownerID string, ids []string) ([]domain.Roadmap, []string, error) {
	found := make([]*domain.Roadmap, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		g.Go(func() error {
			row, err := s.roadmaps.GetByID(dbc(gctx), id)
			if err != nil {
				return fmt.Errorf("load roadmap %s: %w", id, err)
			}
			if row != nil && row.OwnerID == ownerID {
				found[i] = row
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("merge source lookup failed", "owner_id", ownerID, "error", err)
		return nil, nil, err
	}

	sources := make([]domain.Roadmap, 0, len(ids))
	var unresolved []string
	for i, row := range found {
		if row == nil {
			unresolved = append(unresolved, ids[i])
			continue
		}
		sources = append(sources, *row)
	}
	return sources, unresolved, nil
}

func sourceIDs(sources []domain.Roadmap) []string {
	out := make([]string, len(sources))
	for i, r := range sources {
		out[i] = r.ID
	}
	return out
}

func countScheduled(cal domain.Calendar) int {
	n := 0
	for _, units := range cal {
		n += len(units)
	}
	return n
}

func mergeOutcomeLabel(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInsufficientSources):
		return "insufficient_sources"
	case errors.Is(err, apperr.ErrTooManySources):
		return "too_many_sources"
	case errors.Is(err, apperr.ErrInvalidScheduleMode), errors.Is(err, apperr.ErrInvalidScheduleParameter):
		return "invalid_request"
	default:
		return "error"
	}
}
