package diary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andrasnagy-data/voicelog/internal/components/calorie"
	"github.com/andrasnagy-data/voicelog/internal/shared/events"
	"github.com/andrasnagy-data/voicelog/internal/shared/observability"
)

var ErrInvalidItem = errors.New("invalid item")

type (
	// Servicer is the diary API used by the routers and by voice processing.
	Servicer interface {
		LogFood(ctx context.Context, userID uuid.UUID, date, transcript string, in FoodLogIn) (*LogEntry, error)
		LogExercise(ctx context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn, merge bool) (*LogEntry, error)
		GetDay(ctx context.Context, userID uuid.UUID, date string) (*DailySummary, error)
		GetEntry(ctx context.Context, userID uuid.UUID, id int) (*LogEntry, error)
		UpdateEntry(ctx context.Context, userID uuid.UUID, id int, in UpdateLogEntryIn) (*UpdateLogEntryOut, error)
		DeleteEntry(ctx context.Context, userID uuid.UUID, id int) error
	}

	diarySrvc struct {
		repo      repoer
		publisher events.Publisher
		logger    zerolog.Logger
		now       func() time.Time
	}
)

func NewService(repo repoer, publisher events.Publisher, logger zerolog.Logger) Servicer {
	return &diarySrvc{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "diary").Logger(),
		now:       time.Now,
	}
}

// ResolveDate returns date when it is a valid YYYY-MM-DD string and today's
// UTC date when it is empty.
func ResolveDate(date string, now time.Time) (string, error) {
	if date == "" {
		return now.UTC().Format(DateLayout), nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", ErrInvalidDate
	}
	return date, nil
}

func (s *diarySrvc) LogFood(ctx context.Context, userID uuid.UUID, date, transcript string, in FoodLogIn) (*LogEntry, error) {
	date, err := ResolveDate(date, s.now())
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}

	entry, err := s.repo.CreateFood(ctx, userID, date, transcript, in)
	if err != nil {
		return nil, fmt.Errorf("create food entry: %w", err)
	}

	observability.RecordEntryLogged(string(EntryTypeFood))
	s.publish(ctx, events.EntryLogged, entry)
	return entry, nil
}

// LogExercise stores the activities as a new entry. With merge set, the first
// activity is folded into the most recent same-day activity of the same type
// when one exists.
func (s *diarySrvc) LogExercise(ctx context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn, merge bool) (*LogEntry, error) {
	date, err := ResolveDate(date, s.now())
	if err != nil {
		return nil, err
	}
	if len(in.Activities) == 0 {
		return nil, ErrNoItems
	}

	activities := make([]ExerciseActivityIn, len(in.Activities))
	for i, activity := range in.Activities {
		if activity.Intensity != nil && !activity.Intensity.Valid() {
			return nil, fmt.Errorf("%w: unknown intensity %q", ErrInvalidItem, *activity.Intensity)
		}
		if activity.HasEstimateFields() {
			activity.CaloriesBurned = calorie.Estimate(activity.EstimateInput())
		}
		activities[i] = activity
	}
	in.Activities = activities

	if !merge {
		entry, err := s.repo.CreateExercise(ctx, userID, date, transcript, in)
		if err != nil {
			return nil, fmt.Errorf("create exercise entry: %w", err)
		}
		observability.RecordEntryLogged(string(EntryTypeExercise))
		s.publish(ctx, events.EntryLogged, entry)
		return entry, nil
	}

	entry, merged, err := s.repo.MergeExercise(ctx, userID, date, transcript, in)
	if err != nil {
		return nil, fmt.Errorf("merge exercise entry: %w", err)
	}

	if merged {
		s.logger.Debug().
			Int("entry_id", entry.ID).
			Str("activity_type", in.Activities[0].ActivityType).
			Msg("Merged exercise into existing entry")
		observability.RecordExerciseMerged()
		s.publish(ctx, events.EntryMerged, entry)
	} else {
		observability.RecordEntryLogged(string(EntryTypeExercise))
		s.publish(ctx, events.EntryLogged, entry)
	}
	return entry, nil
}

// GetDay lists a day's entries with consumed, burned and net calorie totals.
func (s *diarySrvc) GetDay(ctx context.Context, userID uuid.UUID, date string) (*DailySummary, error) {
	date, err := ResolveDate(date, s.now())
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	summary := &DailySummary{Date: date, Entries: entries}
	for _, entry := range entries {
		switch entry.Type {
		case EntryTypeFood:
			summary.Totals.CaloriesConsumed += entry.TotalCalories()
		case EntryTypeExercise:
			summary.Totals.CaloriesBurned += entry.TotalCalories()
		}
	}
	summary.Totals.NetCalories = summary.Totals.CaloriesConsumed - summary.Totals.CaloriesBurned

	return summary, nil
}

func (s *diarySrvc) GetEntry(ctx context.Context, userID uuid.UUID, id int) (*LogEntry, error) {
	entry, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return entry, nil
}

// UpdateEntry patches items of an entry. Changing the duration, distance or
// intensity of an activity re-runs the estimator and reports the change.
func (s *diarySrvc) UpdateEntry(ctx context.Context, userID uuid.UUID, id int, in UpdateLogEntryIn) (*UpdateLogEntryOut, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}

	var changes []CalorieChange
	entry, err := s.repo.Update(ctx, userID, id, func(entry *LogEntry) error {
		changes = changes[:0]
		for _, update := range in.Items {
			change, err := applyItemUpdate(entry, update)
			if err != nil {
				return err
			}
			if change != nil {
				changes = append(changes, *change)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update entry %d: %w", id, err)
	}

	observability.RecordCaloriesRecalculated(len(changes))
	s.publish(ctx, events.EntryUpdated, entry)

	if changes == nil {
		changes = []CalorieChange{}
	}
	return &UpdateLogEntryOut{LogEntry: entry, CalorieChanges: changes}, nil
}

func (s *diarySrvc) DeleteEntry(ctx context.Context, userID uuid.UUID, id int) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}

	event := events.NewEvent(events.EntryDeleted, userID, id)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Int("entry_id", id).Msg("Failed to publish diary event")
	}
	return nil
}

// publish reports a committed change. Failures are logged and never undo the
// change.
func (s *diarySrvc) publish(ctx context.Context, eventType string, entry *LogEntry) {
	event := events.NewEvent(eventType, entry.UserID, entry.ID)
	event.EntryType = string(entry.Type)
	event.Date = entry.Date
	event.Calories = entry.TotalCalories()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", eventType).
			Int("entry_id", entry.ID).
			Msg("Failed to publish diary event")
	}
}

func applyItemUpdate(entry *LogEntry, update ItemUpdate) (*CalorieChange, error) {
	for i := range entry.Foods {
		if entry.Foods[i].ID == update.ID {
			applyFoodUpdate(&entry.Foods[i], update)
			return nil, nil
		}
	}
	for i := range entry.Activities {
		if entry.Activities[i].ID == update.ID {
			return applyActivityUpdate(&entry.Activities[i], update)
		}
	}
	return nil, fmt.Errorf("item %d: %w", update.ID, ErrNotFound)
}

func applyFoodUpdate(item *FoodItem, update ItemUpdate) {
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Quantity != nil {
		item.Quantity = update.Quantity
	}
	if update.Unit != nil {
		item.Unit = update.Unit
	}
	if update.Calories != nil {
		item.Calories = *update.Calories
	}
	if update.Protein != nil {
		item.Protein = update.Protein
	}
	if update.Carbs != nil {
		item.Carbs = update.Carbs
	}
	if update.Fat != nil {
		item.Fat = update.Fat
	}
	if update.Notes != nil {
		item.Notes = update.Notes
	}
}

// applyActivityUpdate patches the activity. A manual calories value is kept
// unless the same update also changes an estimator input, in which case the
// estimate wins.
func applyActivityUpdate(activity *ExerciseActivity, update ItemUpdate) (*CalorieChange, error) {
	if update.Intensity != nil && !update.Intensity.Valid() {
		return nil, fmt.Errorf("%w: unknown intensity %q", ErrInvalidItem, *update.Intensity)
	}

	original := calorie.Estimated{
		Input:          activity.EstimateInput(),
		CaloriesBurned: activity.CaloriesBurned,
	}

	if update.ActivityType != nil {
		activity.ActivityType = *update.ActivityType
	}
	if update.CaloriesBurned != nil {
		activity.CaloriesBurned = *update.CaloriesBurned
	}
	if update.Notes != nil {
		activity.Notes = update.Notes
	}

	recalculate := false
	if update.DurationMinutes != nil {
		activity.DurationMinutes = nilIfZero(update.DurationMinutes)
		recalculate = true
	}
	if update.Distance != nil {
		activity.Distance = nilIfZero(update.Distance)
		recalculate = true
	}
	if update.Intensity != nil {
		level := *update.Intensity
		activity.Intensity = &level
		recalculate = true
	}
	if !recalculate {
		return nil, nil
	}

	updated := activity.EstimateInput()
	activity.CaloriesBurned = calorie.Estimate(updated)

	return &CalorieChange{
		ActivityID: activity.ID,
		Previous:   original.CaloriesBurned,
		Current:    activity.CaloriesBurned,
		Difference: calorie.Difference(original, updated),
	}, nil
}

func nilIfZero[T int | float64](v *T) *T {
	if v == nil || *v == 0 {
		return nil
	}
	out := *v
	return &out
}
