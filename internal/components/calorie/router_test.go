package calorie

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{
			name:     "estimate walking",
			path:     "/estimate",
			body:     `{"activity_type":"walking","duration_minutes":30,"intensity":"moderate"}`,
			wantCode: http.StatusOK,
			wantBody: `{"calories":120}`,
		},
		{
			name:     "estimate distance override",
			path:     "/estimate",
			body:     `{"activity_type":"running","duration_minutes":60,"distance":3}`,
			wantCode: http.StatusOK,
			wantBody: `{"calories":330}`,
		},
		{
			name:     "difference",
			path:     "/difference",
			body:     `{"original":{"activity_type":"walking","duration_minutes":20,"intensity":"moderate","calories_burned":80},"updated":{"activity_type":"walking","duration_minutes":30,"intensity":"moderate"}}`,
			wantCode: http.StatusOK,
			wantBody: `{"difference":40,"calories":120}`,
		},
		{
			name:     "missing activity type",
			path:     "/estimate",
			body:     `{"duration_minutes":30}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"activity_type is required"}`,
		},
		{
			name:     "unknown intensity",
			path:     "/difference",
			body:     `{"original":{"activity_type":"yoga","calories_burned":10},"updated":{"activity_type":"yoga","intensity":"max"}}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"unknown intensity \"max\""}`,
		},
		{
			name:     "malformed body",
			path:     "/estimate",
			body:     `[`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid request body"}`,
		},
	}

	router := NewRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
