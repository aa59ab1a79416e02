package voice

import "github.com/andrasnagy-data/voicelog/internal/components/diary"

type (
	ProcessVoiceIn struct {
		Transcript     string `json:"transcript"`
		Date           string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
		MergeExercises bool   `json:"merge_exercises"`
	}

	ProcessVoiceOut struct {
		LogEntries []diary.LogEntry `json:"log_entries"`
	}

	// Record is one tool call's worth of extracted data. Exactly one of
	// Food and Exercise is set.
	Record struct {
		Food     *diary.FoodLogIn
		Exercise *diary.ExerciseLogIn
	}
)
