package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
)

// RoadmapRepository is the subset of behaviour shared by every roadmap repo implementation.
type RoadmapRepository interface {
	Create(dbc dbctx.Context, row *domain.Roadmap) (*domain.Roadmap, error)
	GetByID(dbc dbctx.Context, id string) (*domain.Roadmap, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.Roadmap, error)
	Replace(dbc dbctx.Context, row *domain.Roadmap) error
	Delete(dbc dbctx.Context, id string) error
}

type MergedRoadmapRepository interface {
	Create(dbc dbctx.Context, row *domain.MergedRoadmap) (*domain.MergedRoadmap, error)
	GetByID(dbc dbctx.Context, id string) (*domain.MergedRoadmap, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.MergedRoadmap, error)
}

type ProgressRepository interface {
	Create(dbc dbctx.Context, row *domain.ProgressEntry) (*domain.ProgressEntry, error)
	GetByOwnerAndUnit(dbc dbctx.Context, ownerID, roadmapID, unitID string) (*domain.ProgressEntry, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.ProgressEntry, error)
	ListByOwnerAndRoadmap(dbc dbctx.Context, ownerID, roadmapID string) ([]*domain.ProgressEntry, error)
}

// RunRoadmapRepoContract exercises create, read, list, replace and delete.
func RunRoadmapRepoContract(t *testing.T, dbc dbctx.Context, repo RoadmapRepository) {
	t.Helper()

	first, err := repo.Create(dbc, SampleRoadmap("owner-1", "Go Basics", "Fundamentals", "Testing"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("Create: expected repository-generated id")
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Fatalf("Create: expected timestamps, got %+v", first)
	}
	second, err := repo.Create(dbc, SampleRoadmap("owner-1", "Go Services", "Fundamentals"))
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("Create: ids must differ")
	}
	if _, err := repo.Create(dbc, SampleRoadmap("owner-2", "Other", "X")); err != nil {
		t.Fatalf("Create other owner: %v", err)
	}

	got, err := repo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Title != "Go Basics" || len(got.Branches) != 2 {
		t.Fatalf("GetByID: unexpected roadmap %+v", got)
	}
	if got.Branches[0].Units[0].ID != first.Branches[0].Units[0].ID || !got.Branches[0].Units[0].IsCore {
		t.Fatalf("GetByID: branches did not round-trip: %+v", got.Branches)
	}

	missing, err := repo.GetByID(dbc, "does-not-exist")
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: want nil,nil got %+v,%v", missing, err)
	}

	list, err := repo.ListByOwner(dbc, "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByOwner: want 2, got %d", len(list))
	}

	got.Title = "Go Basics v2"
	got.Branches = got.Branches[:1]
	got.EstimatedDurationSeconds = 1800
	if err := repo.Replace(dbc, got); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	replaced, err := repo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID after replace: %v", err)
	}
	if replaced.Title != "Go Basics v2" || len(replaced.Branches) != 1 || replaced.OwnerID != "owner-1" {
		t.Fatalf("Replace: unexpected roadmap %+v", replaced)
	}
	if replaced.CreatedAt.IsZero() || replaced.UpdatedAt.Before(replaced.CreatedAt) {
		t.Fatalf("Replace: unexpected timestamps %v / %v", replaced.CreatedAt, replaced.UpdatedAt)
	}

	if err := repo.Replace(dbc, &domain.Roadmap{ID: "nope", Title: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Replace missing: want ErrNotFound, got %v", err)
	}

	if err := repo.Delete(dbc, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(dbc, second.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Delete twice: want ErrNotFound, got %v", err)
	}
	list, _ = repo.ListByOwner(dbc, "owner-1")
	if len(list) != 1 {
		t.Fatalf("ListByOwner after delete: want 1, got %d", len(list))
	}
}

// RunMergedRoadmapRepoContract checks that calendars and lineage survive storage.
func RunMergedRoadmapRepoContract(t *testing.T, dbc dbctx.Context, repo MergedRoadmapRepository) {
	t.Helper()

	cal := datatypes.NewJSONType(domain.Calendar{
		"2026-01-05": {{
			LearningUnit:  domain.LearningUnit{ID: "u1", Title: "Intro", DurationSeconds: 600, IsCore: true},
			ScheduledTime: "09:00",
			BranchTitle:   "Fundamentals",
		}},
	})
	in := &domain.MergedRoadmap{
		Title:                "Merged: A + B",
		Description:          "Intelligent merge of 2 learning tracks",
		Branches:             SampleRoadmap("o", "A", "Fundamentals").Branches,
		MergedFromRoadmapIDs: []string{"a", "b"},
		Calendar:             cal,
		ScheduleMode:         "auto",
		DailyStudyHours:      1,
		OwnerID:              "owner-1",
	}
	first, err := repo.Create(dbc, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := repo.Create(dbc, in)
	if err != nil {
		t.Fatalf("Create again: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("Create: expected two distinct ids, got %q and %q", first.ID, second.ID)
	}

	got, err := repo.GetByID(dbc, first.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	days := got.CalendarDays()
	if len(days["2026-01-05"]) != 1 || days["2026-01-05"][0].BranchTitle != "Fundamentals" {
		t.Fatalf("GetByID: calendar did not round-trip: %+v", days)
	}
	if len(got.MergedFromRoadmapIDs) != 2 || got.MergedFromRoadmapIDs[1] != "b" {
		t.Fatalf("GetByID: lineage did not round-trip: %+v", got.MergedFromRoadmapIDs)
	}

	noCal := *in
	noCal.Calendar = datatypes.JSONType[domain.Calendar]{}
	plain, err := repo.Create(dbc, &noCal)
	if err != nil {
		t.Fatalf("Create without calendar: %v", err)
	}
	plainGot, _ := repo.GetByID(dbc, plain.ID)
	if len(plainGot.CalendarDays()) != 0 {
		t.Fatalf("expected no calendar, got %+v", plainGot.CalendarDays())
	}

	list, err := repo.ListByOwner(dbc, "owner-1")
	if err != nil || len(list) != 3 {
		t.Fatalf("ListByOwner: want 3, got %d (%v)", len(list), err)
	}
	other, _ := repo.ListByOwner(dbc, "owner-2")
	if len(other) != 0 {
		t.Fatalf("ListByOwner other owner: want 0, got %d", len(other))
	}
}

// RunProgressRepoContract checks uniqueness per (owner, roadmap, unit) and listings.
func RunProgressRepoContract(t *testing.T, dbc dbctx.Context, repo ProgressRepository) {
	t.Helper()

	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	entry := &domain.ProgressEntry{
		OwnerID: "owner-1", RoadmapID: "r1", BranchID: "b1", UnitID: "u1",
		UnitTitle: "Intro", DurationCompletedSeconds: 600, CompletedAt: base,
	}
	created, err := repo.Create(dbc, entry)
	if err != nil || created.ID == "" {
		t.Fatalf("Create: %+v %v", created, err)
	}
	if _, err := repo.Create(dbc, entry); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("Create duplicate: want ErrAlreadyExists, got %v", err)
	}

	next := *entry
	next.UnitID = "u2"
	next.CompletedAt = base.Add(time.Hour)
	if _, err := repo.Create(dbc, &next); err != nil {
		t.Fatalf("Create second unit: %v", err)
	}
	otherRoadmap := *entry
	otherRoadmap.RoadmapID = "r2"
	otherRoadmap.CompletedAt = base.Add(2 * time.Hour)
	if _, err := repo.Create(dbc, &otherRoadmap); err != nil {
		t.Fatalf("Create same unit on other roadmap: %v", err)
	}

	got, err := repo.GetByOwnerAndUnit(dbc, "owner-1", "r1", "u1")
	if err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("GetByOwnerAndUnit: %+v %v", got, err)
	}
	none, err := repo.GetByOwnerAndUnit(dbc, "owner-2", "r1", "u1")
	if err != nil || none != nil {
		t.Fatalf("GetByOwnerAndUnit other owner: %+v %v", none, err)
	}

	all, err := repo.ListByOwner(dbc, "owner-1")
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByOwner: want 3, got %d (%v)", len(all), err)
	}
	if all[0].RoadmapID != "r2" {
		t.Fatalf("ListByOwner: want newest first, got %+v", all[0])
	}

	scoped, err := repo.ListByOwnerAndRoadmap(dbc, "owner-1", "r1")
	if err != nil || len(scoped) != 2 {
		t.Fatalf("ListByOwnerAndRoadmap: want 2, got %d (%v)", len(scoped), err)
	}
	if scoped[0].UnitID != "u1" || scoped[1].UnitID != "u2" {
		t.Fatalf("ListByOwnerAndRoadmap: want oldest first, got %s,%s", scoped[0].UnitID, scoped[1].UnitID)
	}
}

// CanceledContext returns a dbctx whose context is already canceled.
func CanceledContext() dbctx.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return dbctx.Context{Ctx: ctx}
}
