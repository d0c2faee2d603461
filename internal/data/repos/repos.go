package repos

import (
	"gorm.io/gorm"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/learning"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/memory"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/user"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

type UserRepo = user.UserRepo

type RoadmapRepo = learning.RoadmapRepo
type MergedRoadmapRepo = learning.MergedRoadmapRepo
type ProgressRepo = learning.ProgressRepo
type ResumeRepo = learning.ResumeRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return learning.NewRoadmapRepo(db, baseLog)
}
func NewMergedRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) MergedRoadmapRepo {
	return learning.NewMergedRoadmapRepo(db, baseLog)
}
func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return learning.NewProgressRepo(db, baseLog)
}
func NewResumeRepo(db *gorm.DB, baseLog *logger.Logger) ResumeRepo {
	return learning.NewResumeRepo(db, baseLog)
}

// Store groups every repository the services depend on.
type Store struct {
	Users          UserRepo
	Roadmaps       RoadmapRepo
	MergedRoadmaps MergedRoadmapRepo
	Progress       ProgressRepo
	Resumes        ResumeRepo
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return Store{
		Users:          NewUserRepo(db, baseLog),
		Roadmaps:       NewRoadmapRepo(db, baseLog),
		MergedRoadmaps: NewMergedRoadmapRepo(db, baseLog),
		Progress:       NewProgressRepo(db, baseLog),
		Resumes:        NewResumeRepo(db, baseLog),
	}
}

func NewMemoryStore(db *memory.DB) Store {
	return Store{
		Users:          memory.NewUserRepo(db),
		Roadmaps:       memory.NewRoadmapRepo(db),
		MergedRoadmaps: memory.NewMergedRoadmapRepo(db),
		Progress:       memory.NewProgressRepo(db),
		Resumes:        memory.NewResumeRepo(db),
	}
}
