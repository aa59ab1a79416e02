package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/hlog"

	"github.com/andrasnagy-data/voicelog/internal/shared/response"
)

type (
	// HealthSrvc checks the storage backing the diary
	HealthSrvc struct {
		pool *pgxpool.Pool
	}

	HealthResponse struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Storage   string    `json:"storage"`
		Database  bool      `json:"database"`
	}
)

func NewHealthHandler(srvc *HealthSrvc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := hlog.FromRequest(r)

		health := srvc.check(r.Context())
		if health.Status != statusServing {
			logger.Error().Msg("Database healthcheck failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, health)
			return
		}

		logger.Debug().Str("storage", health.Storage).Msg("Healthcheck ok")
		response.WriteJSON(w, http.StatusOK, health)
	}
}

// NewHealthSrvc takes the pool that may be nil when the in-memory store is used.
func NewHealthSrvc(pool *pgxpool.Pool) *HealthSrvc {
	return &HealthSrvc{pool: pool}
}

const (
	statusServing    = "serving"
	statusNotServing = "not serving"
)

func (s *HealthSrvc) check(ctx context.Context) HealthResponse {
	now := time.Now().UTC()

	if s.pool == nil {
		return HealthResponse{Status: statusServing, Timestamp: now, Storage: "memory"}
	}

	var res int
	err := s.pool.QueryRow(ctx, "SELECT 1").Scan(&res)

	health := HealthResponse{
		Status:    statusServing,
		Timestamp: now,
		Storage:   "postgres",
		Database:  err == nil && res == 1,
	}
	if !health.Database {
		health.Status = statusNotServing
	}
	return health
}
