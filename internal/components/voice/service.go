package voice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andrasnagy-data/voicelog/internal/components/diary"
)

var ErrEmptyTranscript = errors.New("transcript is required")

type (
	servicer interface {
		Process(ctx context.Context, userID uuid.UUID, in ProcessVoiceIn) (*ProcessVoiceOut, error)
	}

	voiceSrvc struct {
		extracter Extracter
		diary     diary.Servicer
		logger    zerolog.Logger
		now       func() time.Time
	}
)

func NewService(extracter Extracter, logs diary.Servicer, logger zerolog.Logger) servicer {
	return &voiceSrvc{
		extracter: extracter,
		diary:     logs,
		logger:    logger.With().Str("component", "voice").Logger(),
		now:       time.Now,
	}
}

// Process extracts records from the transcript and logs each of them for the
// given date. Entries already written stay written if a later record fails.
func (s *voiceSrvc) Process(ctx context.Context, userID uuid.UUID, in ProcessVoiceIn) (*ProcessVoiceOut, error) {
	transcript := strings.TrimSpace(in.Transcript)
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}

	date, err := diary.ResolveDate(in.Date, s.now())
	if err != nil {
		return nil, err
	}

	records, err := s.extracter.Extract(ctx, transcript)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("records", len(records)).
		Str("date", date).
		Bool("merge_exercises", in.MergeExercises).
		Msg("Transcript extracted")

	out := &ProcessVoiceOut{LogEntries: make([]diary.LogEntry, 0, len(records))}
	for _, record := range records {
		var (
			entry *diary.LogEntry
			err   error
		)
		switch {
		case record.Food != nil:
			entry, err = s.diary.LogFood(ctx, userID, date, transcript, *record.Food)
		case record.Exercise != nil:
			entry, err = s.diary.LogExercise(ctx, userID, date, transcript, *record.Exercise, in.MergeExercises)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		out.LogEntries = append(out.LogEntries, *entry)
	}

	return out, nil
}
