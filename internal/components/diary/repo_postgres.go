package diary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrasnagy-data/voicelog/internal/components/calorie"
)

const entryColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), timestamp, type, meal_type, raw_transcript, created_at, updated_at`

type (
	repo struct {
		pool *pgxpool.Pool
	}

	// querier is satisfied by both the pool and a transaction.
	querier interface {
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	}
)

func (r *repo) CreateFood(ctx context.Context, userID uuid.UUID, date, transcript string, in FoodLogIn) (*LogEntry, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (*LogEntry, error) {
		entry, err := insertEntry(ctx, tx, userID, date, transcript, EntryTypeFood, in.MealType)
		if err != nil {
			return nil, err
		}

		stmt := `
		INSERT INTO food_items (
			log_entry_id, name, quantity, unit, calories, protein, carbs, fat, notes
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id`

		entry.Foods = make([]FoodItem, 0, len(in.Items))
		for _, item := range in.Items {
			food := FoodItem{
				LogEntryID: entry.ID,
				Name:       item.Name,
				Quantity:   item.Quantity,
				Unit:       item.Unit,
				Calories:   item.Calories,
				Protein:    item.Protein,
				Carbs:      item.Carbs,
				Fat:        item.Fat,
				Notes:      item.Notes,
			}
			err := tx.QueryRow(ctx, stmt,
				entry.ID,
				food.Name,
				food.Quantity,
				food.Unit,
				food.Calories,
				food.Protein,
				food.Carbs,
				food.Fat,
				food.Notes,
			).Scan(&food.ID)
			if err != nil {
				return nil, err
			}
			entry.Foods = append(entry.Foods, food)
		}
		return entry, nil
	})
}

func (r *repo) CreateExercise(ctx context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn) (*LogEntry, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (*LogEntry, error) {
		return createExercise(ctx, tx, userID, date, transcript, in)
	})
}

// MergeExercise serialises merges for the same user and day with a
// transaction-scoped advisory lock, then reads the candidates FOR UPDATE.
func (r *repo) MergeExercise(ctx context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn) (*LogEntry, bool, error) {
	if len(in.Activities) == 0 {
		return nil, false, ErrNoItems
	}

	merged := false
	entry, err := r.inTx(ctx, func(tx pgx.Tx) (*LogEntry, error) {
		lockKey := fmt.Sprintf("%s:%s:%s", userID, date, EntryTypeExercise)
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return nil, err
		}

		candidates, err := listEntries(ctx, tx, userID, date, true)
		if err != nil {
			return nil, err
		}

		entryIdx, activityIdx, ok := ResolveMerge(candidates, in.Activities[0].ActivityType)
		if !ok {
			return createExercise(ctx, tx, userID, date, transcript, in)
		}

		target := candidates[entryIdx]
		activity := MergeActivity(target.Activities[activityIdx], in.Activities[0])

		stmt := `
		UPDATE exercise_activities
		SET duration_minutes = $1, distance = $2, calories_burned = $3
		WHERE id = $4`
		if _, err := tx.Exec(ctx, stmt, activity.DurationMinutes, activity.Distance, activity.CaloriesBurned, activity.ID); err != nil {
			return nil, err
		}

		for _, rest := range in.Activities[1:] {
			if _, err := insertActivity(ctx, tx, target.ID, rest); err != nil {
				return nil, err
			}
		}

		stmt = `UPDATE log_entries SET raw_transcript = $1, updated_at = NOW() WHERE id = $2`
		if _, err := tx.Exec(ctx, stmt, MergeTranscript(target.RawTranscript, transcript), target.ID); err != nil {
			return nil, err
		}

		merged = true
		return getEntry(ctx, tx, userID, target.ID, false)
	})
	if err != nil {
		return nil, false, err
	}
	return entry, merged, nil
}

// ListByDate returns a user's entries for one day, newest first.
func (r *repo) ListByDate(ctx context.Context, userID uuid.UUID, date string) ([]LogEntry, error) {
	return listEntries(ctx, r.pool, userID, date, false)
}

func (r *repo) GetByID(ctx context.Context, userID uuid.UUID, id int) (*LogEntry, error) {
	return getEntry(ctx, r.pool, userID, id, false)
}

// Update writes back every item of the entry after apply has run. The entry
// row is locked for the duration of the transaction.
func (r *repo) Update(ctx context.Context, userID uuid.UUID, id int, apply func(*LogEntry) error) (*LogEntry, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (*LogEntry, error) {
		entry, err := getEntry(ctx, tx, userID, id, true)
		if err != nil {
			return nil, err
		}

		if err := apply(entry); err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx, `UPDATE log_entries SET updated_at = NOW() WHERE id = $1`, id); err != nil {
			return nil, err
		}

		foodStmt := `
		UPDATE food_items
		SET name = $1, quantity = $2, unit = $3, calories = $4, protein = $5, carbs = $6, fat = $7, notes = $8
		WHERE id = $9 AND log_entry_id = $10`
		for _, item := range entry.Foods {
			_, err := tx.Exec(ctx, foodStmt,
				item.Name, item.Quantity, item.Unit, item.Calories,
				item.Protein, item.Carbs, item.Fat, item.Notes,
				item.ID, id,
			)
			if err != nil {
				return nil, err
			}
		}

		activityStmt := `
		UPDATE exercise_activities
		SET activity_type = $1, duration_minutes = $2, intensity = $3, calories_burned = $4, distance = $5, notes = $6
		WHERE id = $7 AND log_entry_id = $8`
		for _, activity := range entry.Activities {
			_, err := tx.Exec(ctx, activityStmt,
				activity.ActivityType, activity.DurationMinutes, intensityArg(activity.Intensity),
				activity.CaloriesBurned, activity.Distance, activity.Notes,
				activity.ID, id,
			)
			if err != nil {
				return nil, err
			}
		}

		return getEntry(ctx, tx, userID, id, false)
	})
}

// Delete removes the entry; its items go with it through ON DELETE CASCADE.
func (r *repo) Delete(ctx context.Context, userID uuid.UUID, id int) error {
	stmt := `DELETE FROM log_entries WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, stmt, id, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *repo) inTx(ctx context.Context, fn func(pgx.Tx) (*LogEntry, error)) (entry *LogEntry, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	entry, err = fn(tx)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func createExercise(ctx context.Context, tx pgx.Tx, userID uuid.UUID, date, transcript string, in ExerciseLogIn) (*LogEntry, error) {
	entry, err := insertEntry(ctx, tx, userID, date, transcript, EntryTypeExercise, nil)
	if err != nil {
		return nil, err
	}

	entry.Activities = make([]ExerciseActivity, 0, len(in.Activities))
	for _, activity := range in.Activities {
		created, err := insertActivity(ctx, tx, entry.ID, activity)
		if err != nil {
			return nil, err
		}
		entry.Activities = append(entry.Activities, *created)
	}
	return entry, nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, userID uuid.UUID, date, transcript string, entryType EntryType, mealType *string) (*LogEntry, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	stmt := `
	INSERT INTO log_entries (
		user_id, date, timestamp, type, meal_type, raw_transcript
	)
	VALUES (
		$1, $2, NOW(), $3, $4, $5
	)
	RETURNING ` + entryColumns

	entry, err := scanEntry(tx.QueryRow(ctx, stmt, userID, day, string(entryType), mealType, transcript))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func insertActivity(ctx context.Context, tx pgx.Tx, entryID int, in ExerciseActivityIn) (*ExerciseActivity, error) {
	stmt := `
	INSERT INTO exercise_activities (
		log_entry_id, activity_type, duration_minutes, intensity, calories_burned, distance, notes
	)
	VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)
	RETURNING id`

	activity := ExerciseActivity{
		LogEntryID:      entryID,
		ActivityType:    in.ActivityType,
		DurationMinutes: in.DurationMinutes,
		Intensity:       in.Intensity,
		CaloriesBurned:  in.CaloriesBurned,
		Distance:        in.Distance,
		Notes:           in.Notes,
	}
	err := tx.QueryRow(ctx, stmt,
		entryID,
		activity.ActivityType,
		activity.DurationMinutes,
		intensityArg(activity.Intensity),
		activity.CaloriesBurned,
		activity.Distance,
		activity.Notes,
	).Scan(&activity.ID)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func getEntry(ctx context.Context, q querier, userID uuid.UUID, id int, forUpdate bool) (*LogEntry, error) {
	stmt := `SELECT ` + entryColumns + ` FROM log_entries WHERE id = $1 AND user_id = $2`
	if forUpdate {
		stmt += ` FOR UPDATE`
	}

	entry, err := scanEntry(q.QueryRow(ctx, stmt, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entries := []LogEntry{*entry}
	if err := loadItems(ctx, q, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func listEntries(ctx context.Context, q querier, userID uuid.UUID, date string, forUpdate bool) ([]LogEntry, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	stmt := `
	SELECT ` + entryColumns + `
	FROM log_entries
	WHERE user_id = $1 AND date = $2
	ORDER BY timestamp DESC, id DESC`
	if forUpdate {
		stmt += ` FOR UPDATE`
	}

	rows, err := q.Query(ctx, stmt, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]LogEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadItems(ctx, q, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// loadItems fills Foods and Activities for the given entries in place.
func loadItems(ctx context.Context, q querier, entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int32, 0, len(entries))
	index := make(map[int]int, len(entries))
	for i, entry := range entries {
		ids = append(ids, int32(entry.ID))
		index[entry.ID] = i
	}

	rows, err := q.Query(ctx, `
	SELECT id, log_entry_id, name, quantity, unit, calories, protein, carbs, fat, notes
	FROM food_items
	WHERE log_entry_id = ANY($1)
	ORDER BY id`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var item FoodItem
		if err := rows.Scan(
			&item.ID,
			&item.LogEntryID,
			&item.Name,
			&item.Quantity,
			&item.Unit,
			&item.Calories,
			&item.Protein,
			&item.Carbs,
			&item.Fat,
			&item.Notes,
		); err != nil {
			rows.Close()
			return err
		}
		i := index[item.LogEntryID]
		entries[i].Foods = append(entries[i].Foods, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
	SELECT id, log_entry_id, activity_type, duration_minutes, intensity, calories_burned, distance, notes
	FROM exercise_activities
	WHERE log_entry_id = ANY($1)
	ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			activity  ExerciseActivity
			intensity *string
		)
		if err := rows.Scan(
			&activity.ID,
			&activity.LogEntryID,
			&activity.ActivityType,
			&activity.DurationMinutes,
			&intensity,
			&activity.CaloriesBurned,
			&activity.Distance,
			&activity.Notes,
		); err != nil {
			return err
		}
		if intensity != nil {
			level := calorie.Intensity(*intensity)
			activity.Intensity = &level
		}
		i := index[activity.LogEntryID]
		entries[i].Activities = append(entries[i].Activities, activity)
	}
	return rows.Err()
}

func scanEntry(row pgx.Row) (*LogEntry, error) {
	var (
		entry     LogEntry
		entryType string
	)
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Date,
		&entry.Timestamp,
		&entryType,
		&entry.MealType,
		&entry.RawTranscript,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Type = EntryType(entryType)
	return &entry, nil
}

func intensityArg(i *calorie.Intensity) *string {
	if i == nil {
		return nil
	}
	s := string(*i)
	return &s
}
