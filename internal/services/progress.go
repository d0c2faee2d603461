package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

const recentCompletionsLimit = 10

type CompleteUnitInput struct {
	RoadmapID string
	BranchID  string
	UnitID    string
	// DurationCompletedSeconds nil means the unit's own duration.
	DurationCompletedSeconds *int
}

type CompleteUnitResult struct {
	Entry            *domain.ProgressEntry
	AlreadyCompleted bool
}

type ProgressService interface {
	CompleteUnit(ctx context.Context, ownerID string, in CompleteUnitInput) (*CompleteUnitResult, error)
	Summary(ctx context.Context, ownerID, roadmapID string) (*domain.ProgressSummary, error)
	Overview(ctx context.Context, ownerID string) (*domain.ProgressOverview, error)
	// CompletedUnitIDs returns the unit ids the owner finished on a roadmap, oldest first.
	CompletedUnitIDs(ctx context.Context, ownerID, roadmapID string) ([]string, error)
}

type progressService struct {
	log      *logger.Logger
	roadmaps repos.RoadmapRepo
	merged   repos.MergedRoadmapRepo
	progress repos.ProgressRepo
	events   redis.EventBus
	metrics  *observability.Metrics
}

func NewProgressService(
	log *logger.Logger,
	roadmaps repos.RoadmapRepo,
	merged repos.MergedRoadmapRepo,
	progress repos.ProgressRepo,
	events redis.EventBus,
	metrics *observability.Metrics,
) ProgressService {
	return &progressService{
		log:      log.With("service", "ProgressService"),
		roadmaps: roadmaps,
		merged:   merged,
		progress: progress,
		events:   events,
		metrics:  metrics,
	}
}

func (s *progressService) CompleteUnit(ctx context.Context, ownerID string, in CompleteUnitInput) (res *CompleteUnitResult, err error) {
	ctx, span := startSpan(ctx, "ProgressService.CompleteUnit")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(in.RoadmapID) == "" || strings.TrimSpace(in.BranchID) == "" || strings.TrimSpace(in.UnitID) == "" {
		return nil, fmt.Errorf("%w: roadmap_id, branch_id and unit_id are required", apperr.ErrInvalidArgument)
	}
	rm, err := resolveOwnedRoadmap(ctx, s.roadmaps, s.merged, ownerID, in.RoadmapID)
	if err != nil {
		return nil, err
	}
	branch, ok := rm.FindBranch(in.BranchID)
	if !ok {
		return nil, fmt.Errorf("%w: branch %s not in roadmap", apperr.ErrInvalidArgument, in.BranchID)
	}
	unit, ok := branch.FindUnit(in.UnitID)
	if !ok {
		return nil, fmt.Errorf("%w: unit %s not in branch", apperr.ErrInvalidArgument, in.UnitID)
	}
	duration := unit.DurationSeconds
	if in.DurationCompletedSeconds != nil {
		if *in.DurationCompletedSeconds < 0 {
			return nil, fmt.Errorf("%w: duration_completed must not be negative", apperr.ErrInvalidArgument)
		}
		duration = *in.DurationCompletedSeconds
	}

	existing, err := s.progress.GetByOwnerAndUnit(dbc(ctx), ownerID, rm.ID, unit.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup progress: %w", err)
	}
	if existing != nil {
		s.metrics.IncProgressCompletion("duplicate")
		return &CompleteUnitResult{Entry: existing, AlreadyCompleted: true}, nil
	}

	created, err := s.progress.Create(dbc(ctx), &domain.ProgressEntry{
		OwnerID:                  ownerID,
		RoadmapID:                rm.ID,
		BranchID:                 branch.ID,
		UnitID:                   unit.ID,
		UnitTitle:                unit.Title,
		DurationCompletedSeconds: duration,
	})
	if errors.Is(err, apperr.ErrAlreadyExists) {
		// lost a race with a concurrent completion of the same unit
		existing, gerr := s.progress.GetByOwnerAndUnit(dbc(ctx), ownerID, rm.ID, unit.ID)
		if gerr != nil {
			return nil, fmt.Errorf("lookup progress after conflict: %w", gerr)
		}
		if existing == nil {
			return nil, errors.New("lookup progress after conflict: entry vanished")
		}
		s.metrics.IncProgressCompletion("duplicate")
		return &CompleteUnitResult{Entry: existing, AlreadyCompleted: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record progress: %w", err)
	}
	s.metrics.IncProgressCompletion("created")
	publish(ctx, s.log, s.events, redis.Event{
		Type:     redis.EventProgressCompleted,
		OwnerID:  ownerID,
		EntityID: created.ID,
		Data: map[string]any{
			"roadmap_id": rm.ID,
			"unit_id":    unit.ID,
			"duration":   duration,
		},
	})
	return &CompleteUnitResult{Entry: created}, nil
}

func (s *progressService) Summary(ctx context.Context, ownerID, roadmapID string) (*domain.ProgressSummary, error) {
	rm, err := resolveOwnedRoadmap(ctx, s.roadmaps, s.merged, ownerID, roadmapID)
	if err != nil {
		return nil, err
	}
	entries, err := s.progress.ListByOwnerAndRoadmap(dbc(ctx), ownerID, rm.ID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return summarize(rm, entries), nil
}

func (s *progressService) Overview(ctx context.Context, ownerID string) (*domain.ProgressOverview, error) {
	entries, err := s.progress.ListByOwner(dbc(ctx), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out := &domain.ProgressOverview{
		CompletionPercentage: map[string]float64{},
		RecentCompletions:    []domain.ProgressEntry{},
	}
	byRoadmap := map[string][]*domain.ProgressEntry{}
	for i, e := range entries {
		out.CompletedUnits++
		out.StudyTimeSeconds += e.DurationCompletedSeconds
		byRoadmap[e.RoadmapID] = append(byRoadmap[e.RoadmapID], e)
		if i < recentCompletionsLimit {
			out.RecentCompletions = append(out.RecentCompletions, *e)
		}
	}
	out.RoadmapsInProgress = len(byRoadmap)

	for roadmapID, list := range byRoadmap {
		rm, err := resolveOwnedRoadmap(ctx, s.roadmaps, s.merged, ownerID, roadmapID)
		if errors.Is(err, apperr.ErrNotFound) {
			// roadmap deleted after progress was recorded
			continue
		}
		if err != nil {
			return nil, err
		}
		out.CompletionPercentage[roadmapID] = summarize(rm, list).ProgressPercent
	}
	return out, nil
}

func (s *progressService) CompletedUnitIDs(ctx context.Context, ownerID, roadmapID string) ([]string, error) {
	entries, err := s.progress.ListByOwnerAndRoadmap(dbc(ctx), ownerID, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UnitID)
	}
	return ids, nil
}

// resolveOwnedRoadmap accepts plain and merged roadmap ids. Roadmaps owned by someone else are not found.
func resolveOwnedRoadmap(ctx context.Context, roadmaps repos.RoadmapRepo, merged repos.MergedRoadmapRepo, ownerID, id string) (*domain.Roadmap, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: roadmap_id is required", apperr.ErrInvalidArgument)
	}
	rm, err := roadmaps.GetByID(dbc(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get roadmap: %w", err)
	}
	if rm != nil {
		if rm.OwnerID != ownerID {
			return nil, apperr.ErrNotFound
		}
		return rm, nil
	}
	m, err := merged.GetByID(dbc(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get merged roadmap: %w", err)
	}
	if m == nil || m.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	asRoadmap := m.AsRoadmap()
	return &asRoadmap, nil
}

func summarize(rm *domain.Roadmap, entries []*domain.ProgressEntry) *domain.ProgressSummary {
	done := make(map[string]*domain.ProgressEntry, len(entries))
	for _, e := range entries {
		done[e.BranchID+"/"+e.UnitID] = e
	}
	out := &domain.ProgressSummary{
		RoadmapID:    rm.ID,
		RoadmapTitle: rm.Title,
		Branches:     make([]domain.BranchProgress, 0, len(rm.Branches)),
	}
	for _, b := range rm.Branches {
		bp := domain.BranchProgress{BranchID: b.ID, BranchTitle: b.Title}
		for _, u := range b.Units {
			bp.TotalUnits++
			bp.TotalDuration += u.DurationSeconds
			if e, ok := done[b.ID+"/"+u.ID]; ok {
				bp.CompletedUnits++
				bp.CompletedDuration += e.DurationCompletedSeconds
			}
		}
		bp.ProgressPercent = percent(bp.CompletedUnits, bp.TotalUnits)
		out.TotalUnits += bp.TotalUnits
		out.CompletedUnits += bp.CompletedUnits
		out.TotalDuration += bp.TotalDuration
		out.CompletedDuration += bp.CompletedDuration
		out.Branches = append(out.Branches, bp)
	}
	out.ProgressPercent = percent(out.CompletedUnits, out.TotalUnits)
	return out
}

// percent rounds to one decimal place.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
