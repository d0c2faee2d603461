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

// MergedRoadmapRepo is insert-only. Merged roadmaps are never updated.
type MergedRoadmapRepo interface {
	Create(dbc dbctx.Context, row *domain.MergedRoadmap) (*domain.MergedRoadmap, error)
	GetByID(dbc dbctx.Context, id string) (*domain.MergedRoadmap, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.MergedRoadmap, error)
}

type mergedRoadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMergedRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) MergedRoadmapRepo {
	return &mergedRoadmapRepo{db: db, log: baseLog.With("repo", "MergedRoadmapRepo")}
}

func (r *mergedRoadmapRepo) Create(dbc dbctx.Context, row *domain.MergedRoadmap) (*domain.MergedRoadmap, error) {
	if row == nil {
		return nil, apperr.ErrInvalidArgument
	}
	out := *row
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now().UTC()
	if err := dbc.DB(r.db).Create(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mergedRoadmapRepo) GetByID(dbc dbctx.Context, id string) (*domain.MergedRoadmap, error) {
	if id == "" {
		return nil, nil
	}
	var out domain.MergedRoadmap
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mergedRoadmapRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.MergedRoadmap, error) {
	var out []*domain.MergedRoadmap
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
