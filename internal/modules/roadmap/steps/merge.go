package steps

import (
	"fmt"
	"math"
	"strings"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
)

const mergedTitlePrefix = "Merged: "

// MergeResult is the deduplicated preview plus the savings it achieved.
type MergeResult struct {
	Preview    domain.MergePreview
	Statistics domain.MergeStatistics
}

// Merge concatenates the branches of sources in order and keeps the first branch for every
// exact title. Durations are summed from the branch estimates, not from units.
// No minimum source count is enforced here.
func Merge(sources []domain.Roadmap) MergeResult {
	titles := make([]string, 0, len(sources))
	seen := make(map[string]struct{})
	kept := make([]domain.Branch, 0)

	original, final, originalCount := 0, 0, 0
	for _, r := range sources {
		titles = append(titles, r.Title)
		for _, b := range r.Branches {
			originalCount++
			original += b.EstimatedDurationSeconds
			if _, dup := seen[b.Title]; dup {
				continue
			}
			seen[b.Title] = struct{}{}
			kept = append(kept, cloneBranch(b))
			final += b.EstimatedDurationSeconds
		}
	}

	saved := original - final
	return MergeResult{
		Preview: domain.MergePreview{
			Title:                    mergedTitlePrefix + strings.Join(titles, " + "),
			Description:              mergedDescription(len(sources)),
			EstimatedDurationSeconds: final,
			Branches:                 kept,
		},
		Statistics: domain.MergeStatistics{
			SourceCount:             len(sources),
			OriginalDurationSeconds: original,
			FinalDurationSeconds:    final,
			DurationSavedSeconds:    saved,
			OriginalBranchCount:     originalCount,
			FinalBranchCount:        len(kept),
			EfficiencyGainPercent:   EfficiencyGain(saved, original),
		},
	}
}

// EfficiencyGain is round(saved/original*100), or 0 when original is 0.
func EfficiencyGain(saved, original int) int {
	if original == 0 {
		return 0
	}
	return int(math.Round(float64(saved) / float64(original) * 100))
}

func mergedDescription(n int) string {
	if n == 1 {
		return "Intelligent merge of 1 learning track"
	}
	return fmt.Sprintf("Intelligent merge of %d learning tracks", n)
}

func cloneBranch(b domain.Branch) domain.Branch {
	out := b
	out.Units = append([]domain.LearningUnit(nil), b.Units...)
	return out
}
