package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ProgressEntry records one completed unit. (owner, roadmap, unit) is unique.
type ProgressEntry struct {
	ID                       string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	OwnerID                  string    `gorm:"column:owner_id;type:varchar(128);not null;uniqueIndex:idx_progress_owner_unit,priority:1" json:"ownerId"`
	RoadmapID                string    `gorm:"column:roadmap_id;type:varchar(64);not null;uniqueIndex:idx_progress_owner_unit,priority:2;index" json:"roadmapId"`
	BranchID                 string    `gorm:"column:branch_id;type:varchar(64);not null" json:"branchId"`
	UnitID                   string    `gorm:"column:unit_id;type:varchar(64);not null;uniqueIndex:idx_progress_owner_unit,priority:3" json:"unitId"`
	UnitTitle                string    `gorm:"column:unit_title" json:"unitTitle"`
	DurationCompletedSeconds int       `gorm:"column:duration_completed;not null;default:0" json:"durationCompleted"`
	CompletedAt              time.Time `gorm:"column:completed_at;not null" json:"completedAt"`
}

func (ProgressEntry) TableName() string { return "progress_entry" }

type BranchProgress struct {
	BranchID          string  `json:"branchId"`
	BranchTitle       string  `json:"branchTitle"`
	TotalUnits        int     `json:"totalUnits"`
	CompletedUnits    int     `json:"completedUnits"`
	TotalDuration     int     `json:"totalDuration"`
	CompletedDuration int     `json:"completedDuration"`
	ProgressPercent   float64 `json:"progressPercent"`
}

type ProgressSummary struct {
	RoadmapID         string           `json:"roadmapId"`
	RoadmapTitle      string           `json:"roadmapTitle"`
	TotalUnits        int              `json:"totalUnits"`
	CompletedUnits    int              `json:"completedUnits"`
	TotalDuration     int              `json:"totalDuration"`
	CompletedDuration int              `json:"completedDuration"`
	ProgressPercent   float64          `json:"progressPercent"`
	Branches          []BranchProgress `json:"branches"`
}

type ProgressOverview struct {
	CompletedUnits       int                `json:"completedUnits"`
	StudyTimeSeconds     int                `json:"studyTime"`
	RoadmapsInProgress   int                `json:"roadmapsInProgress"`
	CompletionPercentage map[string]float64 `json:"completionPercentage"`
	RecentCompletions    []ProgressEntry    `json:"recentCompletions"`
}

const (
	ResumeModeStudy = "study"
	ResumeModeFast  = "fast"
)

type Resume struct {
	ID        string                      `gorm:"type:varchar(64);primaryKey" json:"id"`
	OwnerID   string                      `gorm:"column:owner_id;type:varchar(128);not null;index" json:"ownerId"`
	Mode      string                      `gorm:"column:mode;type:varchar(16);not null" json:"mode"`
	RoadmapID string                      `gorm:"column:roadmap_id;type:varchar(64)" json:"roadmapId,omitempty"`
	Content   string                      `gorm:"column:content;type:text;not null" json:"content"`
	Skills    datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills"`
	UnitIDs   datatypes.JSONSlice[string] `gorm:"column:unit_ids" json:"unitIds"`
	IsDraft   bool                        `gorm:"column:is_draft;not null;default:false" json:"isDraft"`
	CreatedAt time.Time                   `gorm:"column:created_at;not null" json:"createdAt"`
}

func (Resume) TableName() string { return "resume" }

type User struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email       string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	DisplayName string    `gorm:"column:display_name" json:"displayName"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

func (User) TableName() string { return "user_account" }
