package steps

import (
	"math"
	"sort"
	"time"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
)

const (
	DefaultMaxDays       = 30
	DefaultScheduledTime = "09:00"
	DateLayout           = "2006-01-02"
)

type ScheduleInput struct {
	Preview         domain.MergePreview
	DailyStudyHours float64
	// Today is the first candidate day; only its date in its location is used.
	Today time.Time
	// MaxDays bounds the calendar horizon, weekends included. Zero means DefaultMaxDays.
	MaxDays int
	// ScheduledTime is stamped on every unit. Empty means DefaultScheduledTime.
	ScheduledTime string
}

type ScheduleOutput struct {
	Calendar    domain.Calendar
	Unscheduled []domain.ScheduledUnit
	StudyDays   int
}

// Schedule packs the preview's units onto weekdays starting at Today. Core units go first,
// each day takes units in order while they fit the daily budget, and units are never split.
// A unit longer than the whole budget is never placed; it is reported in Unscheduled and
// packing continues with the units behind it.
func Schedule(in ScheduleInput) (ScheduleOutput, error) {
	h := in.DailyStudyHours
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return ScheduleOutput{}, apperr.ErrInvalidScheduleParameter
	}
	maxDays := in.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	stamp := in.ScheduledTime
	if stamp == "" {
		stamp = DefaultScheduledTime
	}
	budget := int(h * 3600)

	queue := FlattenCoreFirst(in.Preview.Branches, stamp)
	cal := domain.Calendar{}

	y, m, d := in.Today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, in.Today.Location())

	placed := make([]bool, len(queue))
	next := 0
	for offset := 0; offset < maxDays && next < len(queue); offset++ {
		day := start.AddDate(0, 0, offset)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		used := 0
		var units []domain.ScheduledUnit
		for next < len(queue) {
			dur := queue[next].DurationSeconds
			if dur > budget {
				next++
				continue
			}
			if used+dur > budget {
				break
			}
			units = append(units, queue[next])
			placed[next] = true
			used += dur
			next++
		}
		if len(units) > 0 {
			cal[day.Format(DateLayout)] = units
		}
	}

	out := ScheduleOutput{Calendar: cal, StudyDays: len(cal)}
	for i, u := range queue {
		if !placed[i] {
			out.Unscheduled = append(out.Unscheduled, u)
		}
	}
	return out, nil
}

// FlattenCoreFirst lists every unit tagged with its branch title, core units first,
// keeping source order inside each group.
func FlattenCoreFirst(branches []domain.Branch, stamp string) []domain.ScheduledUnit {
	var flat []domain.ScheduledUnit
	for _, b := range branches {
		for _, u := range b.Units {
			flat = append(flat, domain.ScheduledUnit{
				LearningUnit:  u,
				ScheduledTime: stamp,
				BranchTitle:   b.Title,
			})
		}
	}
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].IsCore && !flat[j].IsCore
	})
	return flat
}
