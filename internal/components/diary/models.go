package diary

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/andrasnagy-data/voicelog/internal/components/calorie"
)

const DateLayout = "2006-01-02"

// EntryType distinguishes food entries from exercise entries.
type EntryType string

const (
	EntryTypeFood     EntryType = "food"
	EntryTypeExercise EntryType = "exercise"
)

type (
	FoodItem struct {
		ID         int      `json:"id"`
		LogEntryID int      `json:"log_entry_id"`
		Name       string   `json:"name"`
		Quantity   *float64 `json:"quantity"`
		Unit       *string  `json:"unit"`
		Calories   int      `json:"calories"`
		Protein    *float64 `json:"protein"`
		Carbs      *float64 `json:"carbs"`
		Fat        *float64 `json:"fat"`
		Notes      *string  `json:"notes"`
	}

	ExerciseActivity struct {
		ID              int                `json:"id"`
		LogEntryID      int                `json:"log_entry_id"`
		ActivityType    string             `json:"activity_type"`
		DurationMinutes *int               `json:"duration_minutes"`
		Intensity       *calorie.Intensity `json:"intensity"`
		CaloriesBurned  int                `json:"calories_burned"`
		Distance        *float64           `json:"distance"`
		Notes           *string            `json:"notes"`
	}

	// LogEntry groups the records created from one transcript on one date.
	// Food entries carry Foods, exercise entries carry Activities.
	LogEntry struct {
		ID            int                `json:"id"`
		UserID        uuid.UUID          `json:"-"`
		Date          string             `json:"date"` // YYYY-MM-DD
		Timestamp     time.Time          `json:"timestamp"`
		Type          EntryType          `json:"type"`
		MealType      *string            `json:"meal_type"`
		RawTranscript *string            `json:"raw_transcript"`
		CreatedAt     time.Time          `json:"created_at"`
		UpdatedAt     time.Time          `json:"updated_at"`
		Foods         []FoodItem         `json:"-"`
		Activities    []ExerciseActivity `json:"-"`
	}

	Totals struct {
		CaloriesConsumed int `json:"calories_consumed"`
		CaloriesBurned   int `json:"calories_burned"`
		NetCalories      int `json:"net_calories"`
	}

	DailySummary struct {
		Date    string     `json:"date"`
		Entries []LogEntry `json:"entries"`
		Totals  Totals     `json:"totals"`
	}

	FoodItemIn struct {
		Name     string   `json:"name"`
		Quantity *float64 `json:"quantity,omitempty"`
		Unit     *string  `json:"unit,omitempty"`
		Calories int      `json:"calories"`
		Protein  *float64 `json:"protein,omitempty"`
		Carbs    *float64 `json:"carbs,omitempty"`
		Fat      *float64 `json:"fat,omitempty"`
		Notes    *string  `json:"notes,omitempty"`
	}

	FoodLogIn struct {
		MealType *string      `json:"meal_type,omitempty"`
		Items    []FoodItemIn `json:"items"`
	}

	ExerciseActivityIn struct {
		ActivityType    string             `json:"activity_type"`
		DurationMinutes *int               `json:"duration_minutes,omitempty"`
		Intensity       *calorie.Intensity `json:"intensity,omitempty"`
		CaloriesBurned  int                `json:"calories_burned"`
		Distance        *float64           `json:"distance,omitempty"`
		Notes           *string            `json:"notes,omitempty"`
	}

	ExerciseLogIn struct {
		Activities []ExerciseActivityIn `json:"activities"`
	}

	// ItemUpdate patches one food item or exercise activity of an entry.
	// Nil fields are left unchanged.
	ItemUpdate struct {
		ID int `json:"id"`

		Name     *string  `json:"name,omitempty"`
		Quantity *float64 `json:"quantity,omitempty"`
		Unit     *string  `json:"unit,omitempty"`
		Calories *int     `json:"calories,omitempty"`
		Protein  *float64 `json:"protein,omitempty"`
		Carbs    *float64 `json:"carbs,omitempty"`
		Fat      *float64 `json:"fat,omitempty"`

		ActivityType    *string            `json:"activity_type,omitempty"`
		DurationMinutes *int               `json:"duration_minutes,omitempty"`
		Intensity       *calorie.Intensity `json:"intensity,omitempty"`
		CaloriesBurned  *int               `json:"calories_burned,omitempty"`
		Distance        *float64           `json:"distance,omitempty"`

		Notes *string `json:"notes,omitempty"`
	}

	UpdateLogEntryIn struct {
		Items []ItemUpdate `json:"items"`
	}

	// CalorieChange reports an estimator re-run caused by an edit.
	CalorieChange struct {
		ActivityID int `json:"activity_id"`
		Previous   int `json:"previous"`
		Current    int `json:"current"`
		Difference int `json:"difference"`
	}

	UpdateLogEntryOut struct {
		LogEntry       *LogEntry       `json:"log_entry"`
		CalorieChanges []CalorieChange `json:"calorie_changes"`
	}
)

// MarshalJSON emits the entry's children under a single "items" key.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	type entry LogEntry

	var items any
	if e.Type == EntryTypeFood {
		foods := e.Foods
		if foods == nil {
			foods = []FoodItem{}
		}
		items = foods
	} else {
		activities := e.Activities
		if activities == nil {
			activities = []ExerciseActivity{}
		}
		items = activities
	}

	return json.Marshal(struct {
		entry
		Items any `json:"items"`
	}{entry(e), items})
}

// TotalCalories sums the calories of the entry's items.
func (e LogEntry) TotalCalories() int {
	total := 0
	for _, item := range e.Foods {
		total += item.Calories
	}
	for _, activity := range e.Activities {
		total += activity.CaloriesBurned
	}
	return total
}

// EstimateInput converts the activity into estimator input.
func (a ExerciseActivity) EstimateInput() calorie.Input {
	return estimateInput(a.ActivityType, a.DurationMinutes, a.Distance, a.Intensity)
}

// EstimateInput converts the activity into estimator input.
func (a ExerciseActivityIn) EstimateInput() calorie.Input {
	return estimateInput(a.ActivityType, a.DurationMinutes, a.Distance, a.Intensity)
}

// HasEstimateFields reports whether duration, distance or intensity is set.
func (a ExerciseActivityIn) HasEstimateFields() bool {
	return a.DurationMinutes != nil || a.Distance != nil || a.Intensity != nil
}

func estimateInput(activityType string, duration *int, distance *float64, intensity *calorie.Intensity) calorie.Input {
	in := calorie.Input{
		ActivityType: activityType,
		Distance:     distance,
		Intensity:    intensity,
	}
	if duration != nil {
		minutes := float64(*duration)
		in.DurationMinutes = &minutes
	}
	return in
}
