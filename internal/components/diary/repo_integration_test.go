//go:build integration

package diary

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/andrasnagy-data/voicelog/internal/shared/database"
)

func newPostgresRepo(t *testing.T) *repo {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("voicelog"),
		postgrescontainer.WithUsername("voicelog"),
		postgrescontainer.WithPassword("voicelog"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool := waitForPool(t, ctx, connStr)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	return &repo{pool: pool}
}

func waitForPool(t *testing.T, ctx context.Context, connStr string) *pgxpool.Pool {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool
			}
			pool.Close()
		}
		if time.Now().After(deadline) {
			require.NoError(t, err)
		}
		time.Sleep(time.Second)
	}
}

func TestPostgresRepoLifecycle(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	food, err := r.CreateFood(ctx, userID, testDate, "eggs", FoodLogIn{
		MealType: strp("breakfast"),
		Items: []FoodItemIn{
			{Name: "eggs", Quantity: floatp(2), Unit: strp("pieces"), Calories: 140, Protein: floatp(12)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, testDate, food.Date)
	require.Len(t, food.Foods, 1)

	exercise, err := r.CreateExercise(ctx, userID, testDate, "ran", ExerciseLogIn{
		Activities: []ExerciseActivityIn{{ActivityType: "running", DurationMinutes: intp(20), CaloriesBurned: 200}},
	})
	require.NoError(t, err)

	entries, err := r.ListByDate(ctx, userID, testDate)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, exercise.ID, entries[0].ID)
	require.Len(t, entries[0].Activities, 1)
	require.Len(t, entries[1].Foods, 1)
	require.Equal(t, "pieces", *entries[1].Foods[0].Unit)

	updated, err := r.Update(ctx, userID, food.ID, func(e *LogEntry) error {
		e.Foods[0].Calories = 160
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 160, updated.Foods[0].Calories)

	_, err = r.GetByID(ctx, uuid.New(), food.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Delete(ctx, userID, food.ID))
	require.ErrorIs(t, r.Delete(ctx, userID, food.ID), ErrNotFound)

	var items int
	require.NoError(t, r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM food_items WHERE log_entry_id = $1`, food.ID).Scan(&items))
	require.Zero(t, items, "items are removed with their entry")
}

func TestPostgresRepoMerge(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	first, merged, err := r.MergeExercise(ctx, userID, testDate, "walked", ExerciseLogIn{
		Activities: []ExerciseActivityIn{{ActivityType: "Walking", Distance: floatp(1), CaloriesBurned: 90}},
	})
	require.NoError(t, err)
	require.False(t, merged)

	second, merged, err := r.MergeExercise(ctx, userID, testDate, "walked more", ExerciseLogIn{
		Activities: []ExerciseActivityIn{
			{ActivityType: "walking", Distance: floatp(0.5), CaloriesBurned: 45},
			{ActivityType: "yoga", DurationMinutes: intp(15), CaloriesBurned: 60},
		},
	})
	require.NoError(t, err)
	require.True(t, merged)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, second.Activities, 2)
	require.InDelta(t, 1.5, *second.Activities[0].Distance, 1e-9)
	require.Nil(t, second.Activities[0].DurationMinutes)
	require.Equal(t, 135, second.Activities[0].CaloriesBurned)
	require.Equal(t, "walked + walked more", *second.RawTranscript)
}

func TestPostgresRepoConcurrentMerges(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	in := ExerciseLogIn{Activities: []ExerciseActivityIn{{ActivityType: "rowing", CaloriesBurned: 10}}}

	var wg sync.WaitGroup
	for n := 0; n < 10; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := r.MergeExercise(ctx, userID, testDate, "row", in)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := r.ListByDate(ctx, userID, testDate)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 100, entries[0].Activities[0].CaloriesBurned)
}
