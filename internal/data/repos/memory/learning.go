package memory

import (
	"strings"

	"gorm.io/datatypes"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/learning"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/user"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
)

var (
	_ learning.RoadmapRepo       = (*roadmapRepo)(nil)
	_ learning.MergedRoadmapRepo = (*mergedRoadmapRepo)(nil)
	_ learning.ProgressRepo      = (*progressRepo)(nil)
	_ learning.ResumeRepo        = (*resumeRepo)(nil)
	_ user.UserRepo              = (*userRepo)(nil)
)

func cloneRoadmap(r *domain.Roadmap) *domain.Roadmap {
	out := *r
	out.Branches = cloneBranches(r.Branches)
	return &out
}

func cloneMerged(m *domain.MergedRoadmap) *domain.MergedRoadmap {
	out := *m
	out.Branches = cloneBranches(m.Branches)
	out.MergedFromRoadmapIDs = cloneStrings(m.MergedFromRoadmapIDs)
	if src := m.Calendar.Data(); src != nil {
		cal := make(domain.Calendar, len(src))
		for day, units := range src {
			cal[day] = append([]domain.ScheduledUnit(nil), units...)
		}
		out.Calendar = datatypes.NewJSONType(cal)
	}
	return &out
}

type roadmapRepo struct{ db *DB }

func NewRoadmapRepo(db *DB) learning.RoadmapRepo { return &roadmapRepo{db: db} }

func (r *roadmapRepo) Create(dbc dbctx.Context, row *domain.Roadmap) (*domain.Roadmap, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrInvalidArgument
	}
	t := r.db.roadmaps
	t.mu.Lock()
	defer t.mu.Unlock()

	stored := cloneRoadmap(row)
	stored.ID = r.db.newID()
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	t.insert(stored.ID, stored)
	return cloneRoadmap(stored), nil
}

func (r *roadmapRepo) GetByID(dbc dbctx.Context, id string) (*domain.Roadmap, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.roadmaps
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row, ok := t.rows[id]; ok {
		return cloneRoadmap(row), nil
	}
	return nil, nil
}

func (r *roadmapRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.Roadmap, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.roadmaps
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := t.newestFirst(func(row *domain.Roadmap) bool { return row.OwnerID == ownerID })
	out := make([]*domain.Roadmap, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneRoadmap(row))
	}
	return out, nil
}

func (r *roadmapRepo) Replace(dbc dbctx.Context, row *domain.Roadmap) error {
	if err := ctxErr(dbc); err != nil {
		return err
	}
	if row == nil || row.ID == "" {
		return apperr.ErrInvalidArgument
	}
	t := r.db.roadmaps
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.rows[row.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	next := cloneRoadmap(row)
	next.OwnerID = cur.OwnerID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.db.now()
	t.rows[row.ID] = next
	return nil
}

func (r *roadmapRepo) Delete(dbc dbctx.Context, id string) error {
	if err := ctxErr(dbc); err != nil {
		return err
	}
	t := r.db.roadmaps
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.remove(id) {
		return apperr.ErrNotFound
	}
	return nil
}

type mergedRoadmapRepo struct{ db *DB }

func NewMergedRoadmapRepo(db *DB) learning.MergedRoadmapRepo { return &mergedRoadmapRepo{db: db} }

func (r *mergedRoadmapRepo) Create(dbc dbctx.Context, row *domain.MergedRoadmap) (*domain.MergedRoadmap, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrInvalidArgument
	}
	t := r.db.merged
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := cloneMerged(row)
	stored.ID = r.db.newID()
	stored.CreatedAt = r.db.now()
	t.insert(stored.ID, stored)
	return cloneMerged(stored), nil
}

func (r *mergedRoadmapRepo) GetByID(dbc dbctx.Context, id string) (*domain.MergedRoadmap, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.merged
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row, ok := t.rows[id]; ok {
		return cloneMerged(row), nil
	}
	return nil, nil
}

func (r *mergedRoadmapRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.MergedRoadmap, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.merged
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := t.newestFirst(func(row *domain.MergedRoadmap) bool { return row.OwnerID == ownerID })
	out := make([]*domain.MergedRoadmap, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneMerged(row))
	}
	return out, nil
}

type progressRepo struct{ db *DB }

func NewProgressRepo(db *DB) learning.ProgressRepo { return &progressRepo{db: db} }

func (r *progressRepo) Create(dbc dbctx.Context, row *domain.ProgressEntry) (*domain.ProgressEntry, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrInvalidArgument
	}
	t := r.db.progress
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.rows {
		if e.OwnerID == row.OwnerID && e.RoadmapID == row.RoadmapID && e.UnitID == row.UnitID {
			return nil, apperr.ErrAlreadyExists
		}
	}
	stored := *row
	stored.ID = r.db.newID()
	if stored.CompletedAt.IsZero() {
		stored.CompletedAt = r.db.now()
	}
	t.insert(stored.ID, &stored)
	out := stored
	return &out, nil
}

func (r *progressRepo) GetByOwnerAndUnit(dbc dbctx.Context, ownerID, roadmapID, unitID string) (*domain.ProgressEntry, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.progress
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.rows {
		if e.OwnerID == ownerID && e.RoadmapID == roadmapID && e.UnitID == unitID {
			out := *e
			return &out, nil
		}
	}
	return nil, nil
}

func (r *progressRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.ProgressEntry, error) {
	return r.list(dbc, func(e *domain.ProgressEntry) bool { return e.OwnerID == ownerID }, true)
}

func (r *progressRepo) ListByOwnerAndRoadmap(dbc dbctx.Context, ownerID, roadmapID string) ([]*domain.ProgressEntry, error) {
	return r.list(dbc, func(e *domain.ProgressEntry) bool {
		return e.OwnerID == ownerID && e.RoadmapID == roadmapID
	}, false)
}

func (r *progressRepo) list(dbc dbctx.Context, keep func(*domain.ProgressEntry) bool, newestFirst bool) ([]*domain.ProgressEntry, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.progress
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := t.newestFirst(keep)
	out := make([]*domain.ProgressEntry, len(rows))
	for i, e := range rows {
		cp := *e
		if newestFirst {
			out[i] = &cp
		} else {
			out[len(rows)-1-i] = &cp
		}
	}
	return out, nil
}

type resumeRepo struct{ db *DB }

func NewResumeRepo(db *DB) learning.ResumeRepo { return &resumeRepo{db: db} }

func (r *resumeRepo) Create(dbc dbctx.Context, row *domain.Resume) (*domain.Resume, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrInvalidArgument
	}
	t := r.db.resumes
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := *row
	stored.ID = r.db.newID()
	stored.CreatedAt = r.db.now()
	stored.Skills = cloneStrings(row.Skills)
	stored.UnitIDs = cloneStrings(row.UnitIDs)
	t.insert(stored.ID, &stored)
	out := stored
	return &out, nil
}

func (r *resumeRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.Resume, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.resumes
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := t.newestFirst(func(row *domain.Resume) bool { return row.OwnerID == ownerID })
	out := make([]*domain.Resume, 0, len(rows))
	for _, row := range rows {
		cp := *row
		cp.Skills = cloneStrings(row.Skills)
		cp.UnitIDs = cloneStrings(row.UnitIDs)
		out = append(out, &cp)
	}
	return out, nil
}

type userRepo struct{ db *DB }

func NewUserRepo(db *DB) user.UserRepo { return &userRepo{db: db} }

func (r *userRepo) Create(dbc dbctx.Context, row *domain.User) (*domain.User, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	if row == nil || strings.TrimSpace(row.Email) == "" {
		return nil, apperr.ErrInvalidArgument
	}
	email := strings.ToLower(strings.TrimSpace(row.Email))
	t := r.db.users
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range t.rows {
		if u.Email == email {
			return nil, apperr.ErrAlreadyExists
		}
	}
	stored := *row
	stored.ID = r.db.newID()
	stored.Email = email
	stored.CreatedAt = r.db.now()
	t.insert(stored.ID, &stored)
	out := stored
	return &out, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id string) (*domain.User, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	t := r.db.users
	t.mu.RLock()
	defer t.mu.RUnlock()
	if u, ok := t.rows[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*domain.User, error) {
	if err := ctxErr(dbc); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	t := r.db.users
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, u := range t.rows {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}
