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

// RoadmapRepo stores source roadmaps. GetByID returns (nil, nil) when the id is unknown.
type RoadmapRepo interface {
	Create(dbc dbctx.Context, row *domain.Roadmap) (*domain.Roadmap, error)
	GetByID(dbc dbctx.Context, id string) (*domain.Roadmap, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.Roadmap, error)
	Replace(dbc dbctx.Context, row *domain.Roadmap) error
	Delete(dbc dbctx.Context, id string) error
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) Create(dbc dbctx.Context, row *domain.Roadmap) (*domain.Roadmap, error) {
	if row == nil {
		return nil, apperr.ErrInvalidArgument
	}
	now := time.Now().UTC()
	out := *row
	out.ID = uuid.NewString()
	out.CreatedAt = now
	out.UpdatedAt = now
	if err := dbc.DB(r.db).Create(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *roadmapRepo) GetByID(dbc dbctx.Context, id string) (*domain.Roadmap, error) {
	if id == "" {
		return nil, nil
	}
	var out domain.Roadmap
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *roadmapRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.Roadmap, error) {
	var out []*domain.Roadmap
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Replace overwrites every mutable column of an existing roadmap. CreatedAt and OwnerID are kept.
func (r *roadmapRepo) Replace(dbc dbctx.Context, row *domain.Roadmap) error {
	if row == nil || row.ID == "" {
		return apperr.ErrInvalidArgument
	}
	res := dbc.DB(r.db).
		Model(&domain.Roadmap{}).
		Where("id = ?", row.ID).
		Select("title", "description", "estimated_duration", "branches", "updated_at").
		Updates(&domain.Roadmap{
			Title:                    row.Title,
			Description:              row.Description,
			EstimatedDurationSeconds: row.EstimatedDurationSeconds,
			Branches:                 row.Branches,
			UpdatedAt:                time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *roadmapRepo) Delete(dbc dbctx.Context, id string) error {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&domain.Roadmap{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
