package diary

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepo keeps entries in process memory for local development.
// A single mutex serialises writes, which also serialises merges.
type memoryRepo struct {
	mu             sync.Mutex
	entries        map[int]*LogEntry
	nextEntryID    int
	nextItemID     int
	nextActivityID int
	now            func() time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		entries: make(map[int]*LogEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryRepo) CreateFood(_ context.Context, userID uuid.UUID, date, transcript string, in FoodLogIn) (*LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.newEntry(userID, date, transcript, EntryTypeFood)
	entry.MealType = in.MealType
	entry.Foods = make([]FoodItem, 0, len(in.Items))
	for _, item := range in.Items {
		r.nextItemID++
		entry.Foods = append(entry.Foods, FoodItem{
			ID:         r.nextItemID,
			LogEntryID: entry.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			Calories:   item.Calories,
			Protein:    item.Protein,
			Carbs:      item.Carbs,
			Fat:        item.Fat,
			Notes:      item.Notes,
		})
	}
	r.entries[entry.ID] = entry

	return cloneEntry(entry), nil
}

func (r *memoryRepo) CreateExercise(_ context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn) (*LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return cloneEntry(r.createExercise(userID, date, transcript, in)), nil
}

func (r *memoryRepo) MergeExercise(_ context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn) (*LogEntry, bool, error) {
	if len(in.Activities) == 0 {
		return nil, false, ErrNoItems
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := r.list(userID, date)
	entryIdx, activityIdx, ok := ResolveMerge(candidates, in.Activities[0].ActivityType)
	if !ok {
		return cloneEntry(r.createExercise(userID, date, transcript, in)), false, nil
	}

	entry := r.entries[candidates[entryIdx].ID]
	entry.Activities[activityIdx] = MergeActivity(entry.Activities[activityIdx], in.Activities[0])
	for _, activity := range in.Activities[1:] {
		entry.Activities = append(entry.Activities, r.newActivity(entry.ID, activity))
	}

	merged := MergeTranscript(entry.RawTranscript, transcript)
	entry.RawTranscript = &merged
	entry.UpdatedAt = r.now()

	return cloneEntry(entry), true, nil
}

func (r *memoryRepo) ListByDate(_ context.Context, userID uuid.UUID, date string) ([]LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.list(userID, date), nil
}

func (r *memoryRepo) GetByID(_ context.Context, userID uuid.UUID, id int) (*LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return nil, ErrNotFound
	}
	return cloneEntry(entry), nil
}

func (r *memoryRepo) Update(_ context.Context, userID uuid.UUID, id int, apply func(*LogEntry) error) (*LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.entries[id]
	if !ok || stored.UserID != userID {
		return nil, ErrNotFound
	}

	// apply works on a copy so a failed update leaves the stored entry intact
	working := cloneEntry(stored)
	if err := apply(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = r.now()
	r.entries[id] = working

	return cloneEntry(working), nil
}

func (r *memoryRepo) Delete(_ context.Context, userID uuid.UUID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memoryRepo) list(userID uuid.UUID, date string) []LogEntry {
	entries := make([]LogEntry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.Date == date {
			entries = append(entries, *cloneEntry(entry))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

func (r *memoryRepo) createExercise(userID uuid.UUID, date, transcript string, in ExerciseLogIn) *LogEntry {
	entry := r.newEntry(userID, date, transcript, EntryTypeExercise)
	entry.Activities = make([]ExerciseActivity, 0, len(in.Activities))
	for _, activity := range in.Activities {
		entry.Activities = append(entry.Activities, r.newActivity(entry.ID, activity))
	}
	r.entries[entry.ID] = entry
	return entry
}

func (r *memoryRepo) newEntry(userID uuid.UUID, date, transcript string, entryType EntryType) *LogEntry {
	r.nextEntryID++
	now := r.now()
	return &LogEntry{
		ID:            r.nextEntryID,
		UserID:        userID,
		Date:          date,
		Timestamp:     now,
		Type:          entryType,
		RawTranscript: &transcript,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (r *memoryRepo) newActivity(entryID int, in ExerciseActivityIn) ExerciseActivity {
	r.nextActivityID++
	return ExerciseActivity{
		ID:              r.nextActivityID,
		LogEntryID:      entryID,
		ActivityType:    in.ActivityType,
		DurationMinutes: in.DurationMinutes,
		Intensity:       in.Intensity,
		CaloriesBurned:  in.CaloriesBurned,
		Distance:        in.Distance,
		Notes:           in.Notes,
	}
}

// cloneEntry copies the entry and its item slices. Pointer fields are shared;
// callers replace them rather than writing through them.
func cloneEntry(e *LogEntry) *LogEntry {
	out := *e
	out.Foods = slices.Clone(e.Foods)
	out.Activities = slices.Clone(e.Activities)
	return &out
}
