package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},

		&domain.Roadmap{},
		&domain.MergedRoadmap{},

		&domain.ProgressEntry{},
		&domain.Resume{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
