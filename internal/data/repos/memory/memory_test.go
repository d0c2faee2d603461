package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/testutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
)

func TestRoadmapRepoContract(t *testing.T) {
	testutil.RunRoadmapRepoContract(t, dbctx.From(context.Background()), NewRoadmapRepo(New()))
}

func TestMergedRoadmapRepoContract(t *testing.T) {
	testutil.RunMergedRoadmapRepoContract(t, dbctx.From(context.Background()), NewMergedRoadmapRepo(New()))
}

func TestProgressRepoContract(t *testing.T) {
	testutil.RunProgressRepoContract(t, dbctx.From(context.Background()), NewProgressRepo(New()))
}

func TestRowsAreCopied(t *testing.T) {
	repo := NewRoadmapRepo(New())
	dbc := dbctx.From(context.Background())

	in := testutil.SampleRoadmap("o", "Copy", "A")
	created, err := repo.Create(dbc, in)
	require.NoError(t, err)

	in.Branches[0].Units[0].Title = "mutated input"
	created.Branches[0].Title = "mutated output"

	got, err := repo.GetByID(dbc, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Branches[0].Title)
	assert.Equal(t, "A intro", got.Branches[0].Units[0].Title)
}

func TestDeterministicIDsAndCanceledContext(t *testing.T) {
	n := 0
	db := New(WithIDs(func() string { n++; return "id-" + string(rune('0'+n)) }))
	users := NewUserRepo(db)
	dbc := dbctx.From(context.Background())

	u, err := users.Create(dbc, &domain.User{Email: "A@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", u.ID)
	assert.Equal(t, "a@b.c", u.Email)

	_, err = users.Create(dbc, &domain.User{Email: "a@b.c"})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists))

	_, err = users.GetByID(testutil.CanceledContext(), "id-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResumeRepoNewestFirst(t *testing.T) {
	repo := NewResumeRepo(New())
	dbc := dbctx.From(context.Background())

	_, err := repo.Create(dbc, &domain.Resume{OwnerID: "o", Mode: domain.ResumeModeStudy, Content: "first"})
	require.NoError(t, err)
	_, err = repo.Create(dbc, &domain.Resume{OwnerID: "o", Mode: domain.ResumeModeFast, Content: "second"})
	require.NoError(t, err)

	list, err := repo.ListByOwner(dbc, "o")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content)
}
