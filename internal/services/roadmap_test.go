package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
)

func sampleInput() RoadmapInput {
	return RoadmapInput{
		Title:       "  Go Services ",
		Description: "HTTP and storage",
		Branches: []domain.Branch{
			{
				Title: "HTTP",
				Units: []domain.LearningUnit{
					{Title: "net/http", DurationSeconds: 600, IsCore: true},
					{Title: "gin", DurationSeconds: 900},
				},
			},
			{
				ID:                       "storage",
				Title:                    "Storage",
				EstimatedDurationSeconds: 5000,
				Units:                    []domain.LearningUnit{{ID: "gorm", Title: "gorm", DurationSeconds: 1200}},
			},
		},
	}
}

func TestRoadmapCreateFillsIDsAndEstimates(t *testing.T) {
	h := newHarness(t)
	created, err := h.roadmaps.Create(context.Background(), "owner-1", sampleInput())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Go Services", created.Title)
	assert.Equal(t, "owner-1", created.OwnerID)
	require.Len(t, created.Branches, 2)
	assert.NotEmpty(t, created.Branches[0].ID)
	assert.NotEmpty(t, created.Branches[0].Units[1].ID)
	assert.Equal(t, 1500, created.Branches[0].EstimatedDurationSeconds)
	// supplied estimates are kept as given
	assert.Equal(t, 5000, created.Branches[1].EstimatedDurationSeconds)
	assert.Equal(t, "gorm", created.Branches[1].Units[0].ID)
	assert.Equal(t, 6500, created.EstimatedDurationSeconds)
}

func TestRoadmapCreateValidates(t *testing.T) {
	h := newHarness(t)
	cases := map[string]RoadmapInput{
		"no title":     {Branches: sampleInput().Branches},
		"no branches":  {Title: "x"},
		"branch title": {Title: "x", Branches: []domain.Branch{{Title: " "}}},
		"unit title":   {Title: "x", Branches: []domain.Branch{{Title: "b", Units: []domain.LearningUnit{{Title: ""}}}}},
		"negative":     {Title: "x", Branches: []domain.Branch{{Title: "b", Units: []domain.LearningUnit{{Title: "u", DurationSeconds: -1}}}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.roadmaps.Create(context.Background(), "owner-1", in)
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		})
	}
}

func TestRoadmapOwnershipAndLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.roadmaps.Create(ctx, "owner-1", sampleInput())
	require.NoError(t, err)

	_, err = h.roadmaps.Get(ctx, "owner-2", created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = h.roadmaps.Replace(ctx, "owner-2", created.ID, sampleInput())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, h.roadmaps.Delete(ctx, "owner-2", created.ID), apperr.ErrNotFound)

	in := sampleInput()
	in.Title = "Go Services v2"
	in.Branches = in.Branches[:1]
	replaced, err := h.roadmaps.Replace(ctx, "owner-1", created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, "Go Services v2", replaced.Title)
	assert.Len(t, replaced.Branches, 1)
	assert.Equal(t, 1500, replaced.EstimatedDurationSeconds)
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)

	mergeable, err := h.roadmaps.ListMergeable(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, mergeable, 1)
	assert.Equal(t, domain.RoadmapSummary{
		ID: created.ID, Title: "Go Services v2", Description: "HTTP and storage",
		EstimatedDurationSeconds: 1500, BranchCount: 1,
	}, mergeable[0])

	require.NoError(t, h.roadmaps.Delete(ctx, "owner-1", created.ID))
	_, err = h.roadmaps.Get(ctx, "owner-1", created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListMergeableExcludesMergedRoadmaps(t *testing.T) {
	h := newHarness(t)
	a := h.seed(t, "owner-1", "A", "One")
	b := h.seed(t, "owner-1", "B", "Two")
	_, err := h.merge.Merge(context.Background(), "owner-1", MergeRequest{RoadmapIDs: []string{a.ID, b.ID}})
	require.NoError(t, err)

	list, err := h.roadmaps.ListMergeable(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	empty, err := h.roadmaps.ListMergeable(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
