package app

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/db"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/memory"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

// wireRepos opens the configured backend. The returned *gorm.DB is nil for the memory driver.
func wireRepos(log *logger.Logger, cfg db.Config) (repos.Store, *gorm.DB, error) {
	log.Info("Wiring repos...", "driver", cfg.Driver)
	if strings.EqualFold(strings.TrimSpace(cfg.Driver), db.DriverMemory) || strings.TrimSpace(cfg.Driver) == "" {
		return repos.NewMemoryStore(memory.New()), nil, nil
	}
	theDB, err := db.Open(cfg, log)
	if err != nil {
		return repos.Store{}, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		closeDB(theDB)
		return repos.Store{}, nil, err
	}
	return repos.NewGormStore(theDB, log), theDB, nil
}
