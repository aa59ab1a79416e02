package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrasnagy-data/voicelog/internal/components/diary"
	"github.com/andrasnagy-data/voicelog/internal/shared/events"
	"github.com/andrasnagy-data/voicelog/internal/shared/middleware"
)

type stubExtracter struct {
	records []Record
	err     error
	calls   int
}

func (s *stubExtracter) Extract(context.Context, string) ([]Record, error) {
	s.calls++
	return s.records, s.err
}

func intp(v int) *int { return &v }

func newTestService(extracter Extracter) (*voiceSrvc, diary.Servicer) {
	logs := diary.NewService(diary.NewRepo(nil), events.NoopPublisher{}, zerolog.Nop())
	srvc := NewService(extracter, logs, zerolog.Nop()).(*voiceSrvc)
	srvc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return srvc, logs
}

func exerciseRecord(activityType string, minutes int) Record {
	return Record{Exercise: &diary.ExerciseLogIn{
		Activities: []diary.ExerciseActivityIn{{ActivityType: activityType, DurationMinutes: intp(minutes)}},
	}}
}

func TestProcessCreatesFoodAndExercise(t *testing.T) {
	stub := &stubExtracter{records: []Record{
		{Food: &diary.FoodLogIn{Items: []diary.FoodItemIn{{Name: "toast", Calories: 90}}}},
		exerciseRecord("yoga", 45),
	}}
	srvc, logs := newTestService(stub)
	ctx := context.Background()
	userID := uuid.New()

	out, err := srvc.Process(ctx, userID, ProcessVoiceIn{Transcript: "  toast, then yoga  "})
	require.NoError(t, err)
	require.Len(t, out.LogEntries, 2)
	assert.Equal(t, diary.EntryTypeFood, out.LogEntries[0].Type)
	assert.Equal(t, diary.EntryTypeExercise, out.LogEntries[1].Type)
	assert.Equal(t, 180, out.LogEntries[1].Activities[0].CaloriesBurned)
	assert.Equal(t, "toast, then yoga", *out.LogEntries[0].RawTranscript)

	summary, err := logs.GetDay(ctx, userID, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, -90, summary.Totals.NetCalories)
}

func TestProcessMergeFlag(t *testing.T) {
	stub := &stubExtracter{records: []Record{exerciseRecord("running", 10)}}
	srvc, logs := newTestService(stub)
	ctx := context.Background()
	userID := uuid.New()

	_, err := srvc.Process(ctx, userID, ProcessVoiceIn{Transcript: "ran", Date: "2025-02-20"})
	require.NoError(t, err)
	_, err = srvc.Process(ctx, userID, ProcessVoiceIn{Transcript: "ran again", Date: "2025-02-20", MergeExercises: true})
	require.NoError(t, err)

	summary, err := logs.GetDay(ctx, userID, "2025-02-20")
	require.NoError(t, err)
	require.Len(t, summary.Entries, 1)
	assert.Equal(t, 20, *summary.Entries[0].Activities[0].DurationMinutes)
	assert.Equal(t, 200, summary.Entries[0].Activities[0].CaloriesBurned)

	_, err = srvc.Process(ctx, userID, ProcessVoiceIn{Transcript: "ran a third time", Date: "2025-02-20"})
	require.NoError(t, err)

	summary, err = logs.GetDay(ctx, userID, "2025-02-20")
	require.NoError(t, err)
	assert.Len(t, summary.Entries, 2)
}

func TestProcessValidatesBeforeExtracting(t *testing.T) {
	stub := &stubExtracter{records: []Record{exerciseRecord("running", 10)}}
	srvc, _ := newTestService(stub)

	_, err := srvc.Process(context.Background(), uuid.New(), ProcessVoiceIn{Transcript: "   "})
	require.ErrorIs(t, err, ErrEmptyTranscript)

	_, err = srvc.Process(context.Background(), uuid.New(), ProcessVoiceIn{Transcript: "ran", Date: "03/01/2025"})
	require.ErrorIs(t, err, diary.ErrInvalidDate)

	assert.Zero(t, stub.calls)
}

func TestRouterProcess(t *testing.T) {
	tests := []struct {
		name string
		stub *stubExtracter
		body string
		want int
	}{
		{
			name: "created",
			stub: &stubExtracter{records: []Record{exerciseRecord("cycling", 30)}},
			body: `{"transcript":"cycled 30 minutes"}`,
			want: http.StatusCreated,
		},
		{name: "empty transcript", stub: &stubExtracter{}, body: `{"transcript":""}`, want: http.StatusBadRequest},
		{name: "bad json", stub: &stubExtracter{}, body: `{`, want: http.StatusBadRequest},
		{name: "bad date", stub: &stubExtracter{}, body: `{"transcript":"x","date":"soon"}`, want: http.StatusBadRequest},
		{name: "extraction failure", stub: &stubExtracter{err: ErrExtraction}, body: `{"transcript":"hmm"}`, want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srvc, _ := newTestService(tt.stub)
			router := NewRouter(srvc)

			req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(tt.body))
			req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New()))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusCreated {
				var out struct {
					LogEntries []struct {
						Type  string `json:"type"`
						Items []struct {
							CaloriesBurned int `json:"calories_burned"`
						} `json:"items"`
					} `json:"log_entries"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
				require.Len(t, out.LogEntries, 1)
				assert.Equal(t, "exercise", out.LogEntries[0].Type)
				assert.Equal(t, 240, out.LogEntries[0].Items[0].CaloriesBurned)
			}
		})
	}
}
