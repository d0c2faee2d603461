package learning

import (
	"context"
	"testing"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/testutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
)

func TestRoadmapRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewRoadmapRepo(db, testutil.Logger(t))
	testutil.RunRoadmapRepoContract(t, dbctx.Context{Ctx: context.Background(), Tx: tx}, repo)
}

func TestMergedRoadmapRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewMergedRoadmapRepo(db, testutil.Logger(t))
	testutil.RunMergedRoadmapRepoContract(t, dbctx.Context{Ctx: context.Background(), Tx: tx}, repo)
}

func TestProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewProgressRepo(db, testutil.Logger(t))
	testutil.RunProgressRepoContract(t, dbctx.Context{Ctx: context.Background(), Tx: tx}, repo)
}

func TestResumeRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.From(context.Background())

	repo := NewResumeRepo(db, testutil.Logger(t))
	created, err := repo.Create(dbc, &domain.Resume{
		OwnerID: "owner-1",
		Mode:    domain.ResumeModeFast,
		Content: "PROFESSIONAL SUMMARY",
		Skills:  []string{"Go", "SQL"},
		UnitIDs: []string{"u1"},
		IsDraft: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("Create: expected id and timestamp, got %+v", created)
	}

	list, err := repo.ListByOwner(dbc, "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 1 || len(list[0].Skills) != 2 || list[0].Skills[0] != "Go" {
		t.Fatalf("ListByOwner: unexpected result %+v", list)
	}
}

func TestRoadmapRepoHonorsCanceledContext(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRoadmapRepo(db, testutil.Logger(t))

	if _, err := repo.Create(testutil.CanceledContext(), testutil.SampleRoadmap("o", "T", "B")); err == nil {
		t.Fatalf("Create with canceled context: expected error")
	}
}
