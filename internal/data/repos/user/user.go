package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

// UserRepo stores demo identities. Emails are compared lower-cased.
type UserRepo interface {
	Create(dbc dbctx.Context, row *domain.User) (*domain.User, error)
	GetByID(dbc dbctx.Context, id string) (*domain.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) Create(dbc dbctx.Context, row *domain.User) (*domain.User, error) {
	if row == nil || strings.TrimSpace(row.Email) == "" {
		return nil, apperr.ErrInvalidArgument
	}
	out := *row
	out.ID = uuid.NewString()
	out.Email = strings.ToLower(strings.TrimSpace(out.Email))
	out.CreatedAt = time.Now().UTC()
	if err := dbc.DB(ur.db).Create(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, err
	}
	return &out, nil
}

func (ur *userRepo) GetByID(dbc dbctx.Context, id string) (*domain.User, error) {
	return ur.take(dbc, "id = ?", id)
}

func (ur *userRepo) GetByEmail(dbc dbctx.Context, email string) (*domain.User, error) {
	return ur.take(dbc, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (ur *userRepo) take(dbc dbctx.Context, query string, arg string) (*domain.User, error) {
	if arg == "" {
		return nil, nil
	}
	var out domain.User
	err := dbc.DB(ur.db).Where(query, arg).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
