package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/memory"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

const sample = `
roadmaps:
  - title: Frontend Development
    description: Build for the browser
    branches:
      - title: HTML & CSS Fundamentals
        units:
          - title: Semantic HTML
            duration: 1800
            isCore: true
          - title: Flexbox
            duration: 1200
      - title: JavaScript Basics
        estimatedDuration: 5400
        units:
          - id: js-1
            title: Variables
            duration: 900
            isCore: true
  - title: Backend Development
    branches:
      - title: JavaScript Basics
        units:
          - title: Variables
            duration: 900
`

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, f.Roadmaps, 2)
	assert.Equal(t, "Frontend Development", f.Roadmaps[0].Title)
	assert.Equal(t, 1800, f.Roadmaps[0].Branches[0].Units[0].DurationSeconds)
	assert.True(t, f.Roadmaps[0].Branches[0].Units[0].IsCore)
	assert.Equal(t, 5400, f.Roadmaps[0].Branches[1].EstimatedDurationSeconds)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode(strings.NewReader("roadmaps:\n  - description: no title\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("roadmapz: []\n"))
	assert.Error(t, err)

	f, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Roadmaps)
}

func TestApplyIsRepeatable(t *testing.T) {
	store := repos.NewMemoryStore(memory.New())
	dbc := dbctx.Context{Ctx: context.Background()}
	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	res, err := Apply(dbc, logger.Nop(), store, f, " Demo@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.NotEmpty(t, res.OwnerID)

	list, err := store.Roadmaps.ListByOwner(dbc, res.OwnerID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var frontend = list[1]
	if frontend.Title != "Frontend Development" {
		frontend = list[0]
	}
	assert.Equal(t, 3000, frontend.Branches[0].EstimatedDurationSeconds)
	assert.Equal(t, 5400, frontend.Branches[1].EstimatedDurationSeconds)
	assert.Equal(t, 8400, frontend.EstimatedDurationSeconds)
	assert.NotEmpty(t, frontend.Branches[0].ID)
	assert.NotEmpty(t, frontend.Branches[0].Units[0].ID)
	assert.Equal(t, "js-1", frontend.Branches[1].Units[0].ID)

	again, err := Apply(dbc, logger.Nop(), store, f, "demo@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.OwnerID, again.OwnerID)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Skipped)
}

func TestApplyRequiresOwner(t *testing.T) {
	store := repos.NewMemoryStore(memory.New())
	_, err := Apply(dbctx.Context{Ctx: context.Background()}, logger.Nop(), store, &File{}, "  ")
	assert.Error(t, err)
}
