package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

func TestCompleteUnit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rm := h.seed(t, "owner-1", "Go", "Basics", "Testing")
	unit := rm.Branches[0].Units[0]

	res, err := h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{
		RoadmapID: rm.ID, BranchID: rm.Branches[0].ID, UnitID: unit.ID,
	})
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.Equal(t, unit.DurationSeconds, res.Entry.DurationCompletedSeconds)
	assert.Equal(t, unit.Title, res.Entry.UnitTitle)

	again, err := h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{
		RoadmapID: rm.ID, BranchID: rm.Branches[0].ID, UnitID: unit.ID, DurationCompletedSeconds: ptr(5),
	})
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, res.Entry.ID, again.Entry.ID)
	assert.Equal(t, unit.DurationSeconds, again.Entry.DurationCompletedSeconds)

	assert.Equal(t, []string{redis.EventProgressCompleted}, h.bus.types())
}

func TestCompleteUnitRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rm := h.seed(t, "owner-1", "Go", "Basics")
	branch := rm.Branches[0]

	_, err := h.progress.CompleteUnit(ctx, "owner-2", CompleteUnitInput{RoadmapID: rm.ID, BranchID: branch.ID, UnitID: branch.Units[0].ID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{RoadmapID: rm.ID, BranchID: "nope", UnitID: branch.Units[0].ID})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{RoadmapID: rm.ID, BranchID: branch.ID, UnitID: "nope"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{RoadmapID: rm.ID, BranchID: branch.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{
		RoadmapID: rm.ID, BranchID: branch.ID, UnitID: branch.Units[0].ID, DurationCompletedSeconds: ptr(-1),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestProgressSummary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rm := h.seed(t, "owner-1", "Go", "Basics", "Testing", "Tooling")
	b := rm.Branches[0]
	for _, u := range b.Units {
		_, err := h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{RoadmapID: rm.ID, BranchID: b.ID, UnitID: u.ID})
		require.NoError(t, err)
	}

	sum, err := h.progress.Summary(ctx, "owner-1", rm.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, sum.TotalUnits)
	assert.Equal(t, 2, sum.CompletedUnits)
	assert.Equal(t, 5400, sum.TotalDuration)
	assert.Equal(t, 1800, sum.CompletedDuration)
	assert.Equal(t, 33.3, sum.ProgressPercent)
	require.Len(t, sum.Branches, 3)
	assert.Equal(t, 100.0, sum.Branches[0].ProgressPercent)
	assert.Equal(t, 0.0, sum.Branches[1].ProgressPercent)

	_, err = h.progress.Summary(ctx, "owner-2", rm.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProgressOnMergedRoadmap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.seed(t, "owner-1", "A", "One")
	b := h.seed(t, "owner-1", "B", "Two")
	out, err := h.merge.Merge(ctx, "owner-1", MergeRequest{RoadmapIDs: []string{a.ID, b.ID}})
	require.NoError(t, err)
	merged := out.MergedRoadmap

	_, err = h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{
		RoadmapID: merged.ID, BranchID: merged.Branches[1].ID, UnitID: merged.Branches[1].Units[0].ID,
	})
	require.NoError(t, err)

	sum, err := h.progress.Summary(ctx, "owner-1", merged.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalUnits)
	assert.Equal(t, 1, sum.CompletedUnits)
	assert.Equal(t, 25.0, sum.ProgressPercent)
}

func TestProgressOverview(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.seed(t, "owner-1", "A", "One")
	b := h.seed(t, "owner-1", "B", "Two")
	complete := func(rmID, branchID, unitID string) {
		_, err := h.progress.CompleteUnit(ctx, "owner-1", CompleteUnitInput{RoadmapID: rmID, BranchID: branchID, UnitID: unitID})
		require.NoError(t, err)
	}
	complete(a.ID, a.Branches[0].ID, a.Branches[0].Units[0].ID)
	complete(a.ID, a.Branches[0].ID, a.Branches[0].Units[1].ID)
	complete(b.ID, b.Branches[0].ID, b.Branches[0].Units[0].ID)

	ov, err := h.progress.Overview(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, ov.CompletedUnits)
	assert.Equal(t, 2700, ov.StudyTimeSeconds)
	assert.Equal(t, 2, ov.RoadmapsInProgress)
	assert.Equal(t, 100.0, ov.CompletionPercentage[a.ID])
	assert.Equal(t, 50.0, ov.CompletionPercentage[b.ID])
	require.Len(t, ov.RecentCompletions, 3)
	assert.Equal(t, b.ID, ov.RecentCompletions[0].RoadmapID)

	// a deleted roadmap keeps its history but drops out of the percentages
	require.NoError(t, h.roadmaps.Delete(ctx, "owner-1", b.ID))
	ov, err = h.progress.Overview(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, ov.CompletedUnits)
	_, ok := ov.CompletionPercentage[b.ID]
	assert.False(t, ok)

	empty, err := h.progress.Overview(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.CompletedUnits)
	assert.NotNil(t, empty.RecentCompletions)
}

func TestPercentRounding(t *testing.T) {
	assert.Equal(t, 0.0, percent(0, 0))
	assert.Equal(t, 66.7, percent(2, 3))
	assert.Equal(t, 14.3, percent(1, 7))
	assert.Equal(t, 100.0, percent(4, 4))
}

// conflictingProgressRepo reports a unique conflict on Create, as when a concurrent
// request records the same unit first, and fails the follow-up lookup.
type conflictingProgressRepo struct {
	repos.ProgressRepo
	lookups   int
	lookupErr error
}

func (r *conflictingProgressRepo) Create(dbctx.Context, *domain.ProgressEntry) (*domain.ProgressEntry, error) {
	return nil, apperr.ErrAlreadyExists
}

func (r *conflictingProgressRepo) GetByOwnerAndUnit(dbctx.Context, string, string, string) (*domain.ProgressEntry, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return nil, r.lookupErr
}

func TestCompleteUnitConflictLookupFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rm := h.seed(t, "owner-1", "Go", "Basics")
	branch := rm.Branches[0]
	in := CompleteUnitInput{RoadmapID: rm.ID, BranchID: branch.ID, UnitID: branch.Units[0].ID}

	dbDown := errors.New("connection reset")
	repo := &conflictingProgressRepo{ProgressRepo: h.store.Progress, lookupErr: dbDown}
	svc := NewProgressService(logger.Nop(), h.store.Roadmaps, h.store.MergedRoadmaps, repo, h.bus, h.metrics)

	_, err := svc.CompleteUnit(ctx, "owner-1", in)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbDown)
	assert.NotErrorIs(t, err, apperr.ErrAlreadyExists)
	assert.Equal(t, 2, repo.lookups)

	vanished := &conflictingProgressRepo{ProgressRepo: h.store.Progress}
	svc = NewProgressService(logger.Nop(), h.store.Roadmaps, h.store.MergedRoadmaps, vanished, h.bus, h.metrics)
	_, err = svc.CompleteUnit(ctx, "owner-1", in)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrAlreadyExists)
}
