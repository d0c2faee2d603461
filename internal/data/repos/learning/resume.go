package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

type ResumeRepo interface {
	Create(dbc dbctx.Context, row *domain.Resume) (*domain.Resume, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.Resume, error)
}

type resumeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResumeRepo(db *gorm.DB, baseLog *logger.Logger) ResumeRepo {
	return &resumeRepo{db: db, log: baseLog.With("repo", "ResumeRepo")}
}

func (r *resumeRepo) Create(dbc dbctx.Context, row *domain.Resume) (*domain.Resume, error) {
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

func (r *resumeRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*domain.Resume, error) {
	var out []*domain.Resume
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
