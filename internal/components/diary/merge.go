package diary

import (
	"sort"
	"strings"
)

// ResolveMerge finds the activity an incoming exercise of activityType should
// fold into. Exercise entries are searched most recent timestamp first, and
// activities in stored order; the first case-insensitive exact type match
// wins. It returns indexes into entries and into that entry's Activities.
func ResolveMerge(entries []LogEntry, activityType string) (entryIdx, activityIdx int, ok bool) {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return entries[order[a]].Timestamp.After(entries[order[b]].Timestamp)
	})

	want := strings.ToLower(activityType)
	for _, i := range order {
		if entries[i].Type != EntryTypeExercise {
			continue
		}
		for j, activity := range entries[i].Activities {
			if strings.ToLower(activity.ActivityType) == want {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// MergeActivity adds the incoming activity's duration, distance and calories
// onto existing. A duration or distance that sums to zero is stored as absent.
// Calories are summed as reported and not re-estimated.
func MergeActivity(existing ExerciseActivity, incoming ExerciseActivityIn) ExerciseActivity {
	merged := existing
	merged.DurationMinutes = sumOrNil(existing.DurationMinutes, incoming.DurationMinutes)
	merged.Distance = sumOrNil(existing.Distance, incoming.Distance)
	merged.CaloriesBurned = existing.CaloriesBurned + incoming.CaloriesBurned
	return merged
}

// MergeTranscript joins the owning entry's transcript with the new one.
func MergeTranscript(existing *string, incoming string) string {
	if existing == nil || *existing == "" {
		return incoming
	}
	return *existing + " + " + incoming
}

func sumOrNil[T int | float64](a, b *T) *T {
	var total T
	if a != nil {
		total += *a
	}
	if b != nil {
		total += *b
	}
	if total == 0 {
		return nil
	}
	return &total
}
