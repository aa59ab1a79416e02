package diary

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("log entry not found")
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrNoItems     = errors.New("at least one item is required")
)

type (
	repoer interface {
		CreateFood(ctx context.Context, userID uuid.UUID, date, transcript string, in FoodLogIn) (*LogEntry, error)
		CreateExercise(ctx context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn) (*LogEntry, error)
		// MergeExercise folds the first activity into a matching same-day
		// activity, or creates a new entry when nothing matches. The bool
		// reports whether a merge happened. It is atomic.
		MergeExercise(ctx context.Context, userID uuid.UUID, date, transcript string, in ExerciseLogIn) (*LogEntry, bool, error)
		ListByDate(ctx context.Context, userID uuid.UUID, date string) ([]LogEntry, error)
		GetByID(ctx context.Context, userID uuid.UUID, id int) (*LogEntry, error)
		// Update loads the entry, lets apply mutate its items and persists the
		// result in one transaction.
		Update(ctx context.Context, userID uuid.UUID, id int, apply func(*LogEntry) error) (*LogEntry, error)
		Delete(ctx context.Context, userID uuid.UUID, id int) error
	}
)

// NewRepo returns the PostgreSQL repository, or the in-memory one when no
// pool is configured.
func NewRepo(pool *pgxpool.Pool) repoer {
	if pool == nil {
		return newMemoryRepo()
	}
	return &repo{pool: pool}
}
