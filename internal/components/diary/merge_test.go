package diary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string { return &v }

func TestMergeActivitySums(t *testing.T) {
	existing := ExerciseActivity{
		ID:              7,
		ActivityType:    "Running",
		DurationMinutes: intp(20),
		Distance:        floatp(2),
		CaloriesBurned:  240,
	}

	merged := MergeActivity(existing, ExerciseActivityIn{
		ActivityType:    "running",
		DurationMinutes: intp(10),
		Distance:        floatp(1.5),
		CaloriesBurned:  100,
	})

	assert.Equal(t, 7, merged.ID)
	assert.Equal(t, "Running", merged.ActivityType)
	require.NotNil(t, merged.DurationMinutes)
	assert.Equal(t, 30, *merged.DurationMinutes)
	require.NotNil(t, merged.Distance)
	assert.InDelta(t, 3.5, *merged.Distance, 1e-9)
	assert.Equal(t, 340, merged.CaloriesBurned)
}

func TestMergeActivityZeroSumIsAbsent(t *testing.T) {
	merged := MergeActivity(
		ExerciseActivity{ActivityType: "yoga", CaloriesBurned: 120},
		ExerciseActivityIn{ActivityType: "yoga", DurationMinutes: intp(0), CaloriesBurned: 60},
	)

	assert.Nil(t, merged.DurationMinutes)
	assert.Nil(t, merged.Distance)
	assert.Equal(t, 180, merged.CaloriesBurned)
}

func TestMergeActivityIsAssociative(t *testing.T) {
	base := ExerciseActivity{ActivityType: "cycling", DurationMinutes: intp(15), CaloriesBurned: 120}
	a := ExerciseActivityIn{ActivityType: "cycling", DurationMinutes: intp(10), Distance: floatp(4), CaloriesBurned: 80}
	b := ExerciseActivityIn{ActivityType: "cycling", DurationMinutes: intp(5), CaloriesBurned: 40}

	stepwise := MergeActivity(MergeActivity(base, a), b)

	combined := MergeActivity(base, ExerciseActivityIn{
		ActivityType:    "cycling",
		DurationMinutes: intp(15),
		Distance:        floatp(4),
		CaloriesBurned:  120,
	})

	assert.Equal(t, *combined.DurationMinutes, *stepwise.DurationMinutes)
	assert.InDelta(t, *combined.Distance, *stepwise.Distance, 1e-9)
	assert.Equal(t, combined.CaloriesBurned, stepwise.CaloriesBurned)
}

func TestMergeTranscript(t *testing.T) {
	assert.Equal(t, "ran 2 miles", MergeTranscript(nil, "ran 2 miles"))
	assert.Equal(t, "ran 2 miles", MergeTranscript(strp(""), "ran 2 miles"))
	assert.Equal(t, "ran 1 mile + ran 2 miles", MergeTranscript(strp("ran 1 mile"), "ran 2 miles"))
}

func TestResolveMerge(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	entries := []LogEntry{
		{
			ID:        1,
			Type:      EntryTypeExercise,
			Timestamp: t0,
			Activities: []ExerciseActivity{
				{ID: 10, ActivityType: "Running"},
			},
		},
		{
			ID:        2,
			Type:      EntryTypeFood,
			Timestamp: t0.Add(2 * time.Hour),
		},
		{
			ID:        3,
			Type:      EntryTypeExercise,
			Timestamp: t0.Add(time.Hour),
			Activities: []ExerciseActivity{
				{ID: 30, ActivityType: "yoga"},
				{ID: 31, ActivityType: "running"},
			},
		},
	}

	tests := []struct {
		name         string
		activityType string
		wantEntry    int
		wantActivity int
		wantOK       bool
	}{
		{name: "most recent entry wins", activityType: "RUNNING", wantEntry: 2, wantActivity: 1, wantOK: true},
		{name: "only match", activityType: "yoga", wantEntry: 2, wantActivity: 0, wantOK: true},
		{name: "substring is not a match", activityType: "run", wantEntry: -1, wantActivity: -1},
		{name: "no exercise of that type", activityType: "swimming", wantEntry: -1, wantActivity: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entryIdx, activityIdx, ok := ResolveMerge(entries, tt.activityType)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantEntry, entryIdx)
			assert.Equal(t, tt.wantActivity, activityIdx)
		})
	}
}

func TestResolveMergeEmpty(t *testing.T) {
	_, _, ok := ResolveMerge(nil, "running")
	assert.False(t, ok)
}
