package roadmap

import (
	"time"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/modules/roadmap/steps"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

type UsecasesDeps struct {
	Log *logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
	// Location decides what "today" means for the calendar. Defaults to UTC.
	Location *time.Location

	MaxDays       int
	ScheduledTime string
}

// Usecases is the pure merge and scheduling core. It performs no I/O.
type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.MaxDays <= 0 {
		deps.MaxDays = steps.DefaultMaxDays
	}
	if deps.ScheduledTime == "" {
		deps.ScheduledTime = steps.DefaultScheduledTime
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

type (
	MergeResult    = steps.MergeResult
	ScheduleOutput = steps.ScheduleOutput
)

func (u Usecases) Preview(sources []domain.Roadmap) MergeResult {
	res := steps.Merge(sources)
	u.deps.Log.Debug("merge preview computed",
		"source_count", res.Statistics.SourceCount,
		"original_branches", res.Statistics.OriginalBranchCount,
		"final_branches", res.Statistics.FinalBranchCount,
		"efficiency_gain", res.Statistics.EfficiencyGainPercent,
	)
	return res
}

func (u Usecases) Schedule(preview domain.MergePreview, dailyStudyHours float64) (ScheduleOutput, error) {
	out, err := steps.Schedule(steps.ScheduleInput{
		Preview:         preview,
		DailyStudyHours: dailyStudyHours,
		Today:           u.deps.Now().In(u.deps.Location),
		MaxDays:         u.deps.MaxDays,
		ScheduledTime:   u.deps.ScheduledTime,
	})
	if err != nil {
		return ScheduleOutput{}, err
	}
	if len(out.Unscheduled) > 0 {
		u.deps.Log.Warn("calendar left units unscheduled",
			"max_days", u.deps.MaxDays,
			"unscheduled", len(out.Unscheduled),
		)
	}
	return out, nil
}
