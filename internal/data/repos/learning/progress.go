package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

// ProgressRepo stores unit completions. Create returns apperr.ErrAlreadyExists when the
// (owner, roadmap, unit) triple is already recorded.
type ProgressRepo interface {
	Create(dbc dbctx.Context, row *domain.ProgressEntry) (*domain.ProgressEntry, error)
	GetByOwnerAndUnit(dbc dbctx.Context, ownerID, roadmapID, unitID string) (*domain.ProgressEntry, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.ProgressEntry, error)
	ListByOwnerAndRoadmap(dbc dbctx.Context, ownerID, roadmapID string) ([]*domain.ProgressEntry, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Create(dbc dbctx.Context, row *domain.ProgressEntry) (*domain.ProgressEntry, error) {
	if row == nil {
		return nil, apperr.ErrInvalidArgument
	}
	out := *row
	out.ID = uuid.NewString()
	if out.CompletedAt.IsZero() {
		out.CompletedAt = time.Now().UTC()
	}
	if err := dbc.DB(r.db).Create(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, err
	}
	return &out, nil
}

func (r *progressRepo) GetByOwnerAndUnit(dbc dbctx.Context, ownerID, roadmapID, unitID string) (*domain.ProgressEntry, error) {
	var out domain.ProgressEntry
	err := dbc.DB(r.db).
		Where("owner_id = ? AND roadmap_id = ? AND unit_id = ?", ownerID, roadmapID, unitID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *progressRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.ProgressEntry, error) {
	var out []*domain.ProgressEntry
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("completed_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) ListByOwnerAndRoadmap(dbc dbctx.Context, ownerID, roadmapID string) ([]*domain.ProgressEntry, error) {
	var out []*domain.ProgressEntry
	if err := dbc.DB(r.db).
		Where("owner_id = ? AND roadmap_id = ?", ownerID, roadmapID).
		Order("completed_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
