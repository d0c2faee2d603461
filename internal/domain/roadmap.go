package domain

import (
	"time"

	"gorm.io/datatypes"
)

// LearningUnit is a single video or lesson. Dedup compares titles, never ids.
type LearningUnit struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	DurationSeconds int    `json:"duration" yaml:"duration"`
	IsCore          bool   `json:"isCore" yaml:"isCore"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Branch is a titled, ordered group of units. EstimatedDurationSeconds is trusted as supplied.
type Branch struct {
	ID                       string         `json:"id" yaml:"id"`
	Title                    string         `json:"title" yaml:"title"`
	Description              string         `json:"description,omitempty" yaml:"description,omitempty"`
	Units                    []LearningUnit `json:"units" yaml:"units"`
	EstimatedDurationSeconds int            `json:"estimatedDuration" yaml:"estimatedDuration"`
}

// UnitsDuration sums the unit durations of the branch.
func (b Branch) UnitsDuration() int {
	total := 0
	for _, u := range b.Units {
		total += u.DurationSeconds
	}
	return total
}

// FindUnit returns the unit with the given id.
func (b Branch) FindUnit(unitID string) (LearningUnit, bool) {
	for _, u := range b.Units {
		if u.ID == unitID {
			return u, true
		}
	}
	return LearningUnit{}, false
}

type Roadmap struct {
	ID                       string                      `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title                    string                      `gorm:"column:title;not null" json:"title"`
	Description              string                      `gorm:"column:description;type:text" json:"description,omitempty"`
	EstimatedDurationSeconds int                         `gorm:"column:estimated_duration;not null;default:0" json:"estimatedDuration"`
	Branches                 datatypes.JSONSlice[Branch] `gorm:"column:branches" json:"branches"`
	OwnerID                  string                      `gorm:"column:owner_id;type:varchar(128);not null;index" json:"ownerId"`
	CreatedAt                time.Time                   `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt                time.Time                   `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Roadmap) TableName() string { return "roadmap" }

// FindBranch returns the branch with the given id.
func (r Roadmap) FindBranch(branchID string) (Branch, bool) {
	for _, b := range r.Branches {
		if b.ID == branchID {
			return b, true
		}
	}
	return Branch{}, false
}

// RoadmapSummary is the listing shape of a roadmap that can be merged.
type RoadmapSummary struct {
	ID                       string `json:"id"`
	Title                    string `json:"title"`
	Description              string `json:"description"`
	EstimatedDurationSeconds int    `json:"estimatedDuration"`
	BranchCount              int    `json:"branchCount"`
}

func (r Roadmap) Summary() RoadmapSummary {
	return RoadmapSummary{
		ID:                       r.ID,
		Title:                    r.Title,
		Description:              r.Description,
		EstimatedDurationSeconds: r.EstimatedDurationSeconds,
		BranchCount:              len(r.Branches),
	}
}

// MergePreview is the unsaved result of deduplicating branches across roadmaps.
type MergePreview struct {
	Title                    string   `json:"title"`
	Description              string   `json:"description"`
	EstimatedDurationSeconds int      `json:"estimatedDuration"`
	Branches                 []Branch `json:"branches"`
}

type MergeStatistics struct {
	SourceCount             int `json:"sourceCount"`
	OriginalDurationSeconds int `json:"originalDuration"`
	FinalDurationSeconds    int `json:"finalDuration"`
	DurationSavedSeconds    int `json:"durationSaved"`
	OriginalBranchCount     int `json:"originalBranchCount"`
	FinalBranchCount        int `json:"finalBranchCount"`
	EfficiencyGainPercent   int `json:"efficiencyGain"`
}

// ScheduledUnit is a unit placed on a calendar day.
type ScheduledUnit struct {
	LearningUnit
	ScheduledTime string `json:"scheduledTime"`
	BranchTitle   string `json:"branchTitle"`
}

// Calendar maps an ISO date (2006-01-02) to the units studied that day.
type Calendar map[string][]ScheduledUnit

type MergedRoadmap struct {
	ID                       string                       `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title                    string                       `gorm:"column:title;not null" json:"title"`
	Description              string                       `gorm:"column:description;type:text" json:"description"`
	EstimatedDurationSeconds int                          `gorm:"column:estimated_duration;not null;default:0" json:"estimatedDuration"`
	Branches                 datatypes.JSONSlice[Branch]  `gorm:"column:branches" json:"branches"`
	MergedFromRoadmapIDs     datatypes.JSONSlice[string]  `gorm:"column:merged_from" json:"mergedFrom"`
	Calendar                 datatypes.JSONType[Calendar] `gorm:"column:calendar" json:"calendar"`
	ScheduleMode             string                       `gorm:"column:schedule_mode;type:varchar(16);not null;default:'none'" json:"scheduleMode"`
	DailyStudyHours          float64                      `gorm:"column:daily_study_hours;not null;default:0" json:"dailyStudyHours,omitempty"`
	OwnerID                  string                       `gorm:"column:owner_id;type:varchar(128);not null;index" json:"ownerId"`
	CreatedAt                time.Time                    `gorm:"column:created_at;not null" json:"createdAt"`
}

func (MergedRoadmap) TableName() string { return "merged_roadmap" }

// CalendarDays returns the attached calendar or nil.
func (m MergedRoadmap) CalendarDays() Calendar {
	return m.Calendar.Data()
}

// AsRoadmap exposes a merged roadmap through the plain roadmap shape used by progress tracking.
func (m MergedRoadmap) AsRoadmap() Roadmap {
	return Roadmap{
		ID:                       m.ID,
		Title:                    m.Title,
		Description:              m.Description,
		EstimatedDurationSeconds: m.EstimatedDurationSeconds,
		Branches:                 m.Branches,
		OwnerID:                  m.OwnerID,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.CreatedAt,
	}
}

// FillDefaults assigns missing branch and unit ids, derives zero branch estimates
// from unit durations, and sets the roadmap estimate to the sum of branch estimates.
func (r *Roadmap) FillDefaults(newID func() string) {
	total := 0
	for i := range r.Branches {
		b := &r.Branches[i]
		if b.ID == "" {
			b.ID = newID()
		}
		for j := range b.Units {
			if b.Units[j].ID == "" {
				b.Units[j].ID = newID()
			}
		}
		if b.EstimatedDurationSeconds == 0 {
			b.EstimatedDurationSeconds = b.UnitsDuration()
		}
		total += b.EstimatedDurationSeconds
	}
	r.EstimatedDurationSeconds = total
}
