package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/db"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

var dbSeq atomic.Int64

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB returns a migrated database. TEST_POSTGRES_DSN selects Postgres; otherwise every
// call gets its own in-memory SQLite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var dialector gorm.Dialector
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		name := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", dbSeq.Add(1))
		dialector = sqlite.Open(name)
	}

	conn, err := gorm.Open(dialector, cfg)
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// SampleRoadmap builds a roadmap with one branch per title, two 900s units each,
// the first of them core.
func SampleRoadmap(ownerID, title string, branchTitles ...string) *domain.Roadmap {
	r := &domain.Roadmap{OwnerID: ownerID, Title: title, Description: title + " track"}
	for i, bt := range branchTitles {
		prefix := fmt.Sprintf("%s-%d", strings.ReplaceAll(strings.ToLower(title), " ", "-"), i)
		b := domain.Branch{
			ID:    prefix,
			Title: bt,
			Units: []domain.LearningUnit{
				{ID: prefix + "-a", Title: bt + " intro", DurationSeconds: 900, IsCore: true},
				{ID: prefix + "-b", Title: bt + " practice", DurationSeconds: 900},
			},
			EstimatedDurationSeconds: 1800,
		}
		r.Branches = append(r.Branches, b)
		r.EstimatedDurationSeconds += b.EstimatedDurationSeconds
	}
	return r
}
