package diary

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/andrasnagy-data/voicelog/internal/shared/middleware"
	"github.com/andrasnagy-data/voicelog/internal/shared/response"
)

type (
	Router struct {
		service Servicer
	}
)

func NewRouter(service Servicer) chi.Router {
	router := &Router{service: service}
	return router.Routes()
}

func (r *Router) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.GetDay)
	router.Get("/{id}", r.GetEntry)
	router.Put("/{id}", r.UpdateEntry)
	router.Delete("/{id}", r.DeleteEntry)

	return router
}

// GetDay returns the daily summary for ?date=YYYY-MM-DD, defaulting to today.
func (r *Router) GetDay(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	userID := middleware.GetUserID(ctx)

	summary, err := r.service.GetDay(ctx, userID, req.URL.Query().Get("date"))
	if err != nil {
		logger.Error().Err(err).Msg("Error getting daily summary")
		WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, summary)
}

func (r *Router) GetEntry(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	id, ok := entryID(w, req)
	if !ok {
		return
	}

	entry, err := r.service.GetEntry(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		logger.Error().Err(err).Int("entry_id", id).Msg("Error getting log entry")
		WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, entry)
}

func (r *Router) UpdateEntry(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	id, ok := entryID(w, req)
	if !ok {
		return
	}

	var in UpdateLogEntryIn
	if err := response.DecodeJSON(req, &in); err != nil {
		logger.Warn().Err(err).Msg("Invalid update body")
		response.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := r.service.UpdateEntry(ctx, middleware.GetUserID(ctx), id, in)
	if err != nil {
		logger.Error().Err(err).Int("entry_id", id).Msg("Error updating log entry")
		WriteServiceError(w, err)
		return
	}

	logger.Info().
		Int("entry_id", id).
		Int("calorie_changes", len(out.CalorieChanges)).
		Msg("Log entry updated")
	response.WriteJSON(w, http.StatusOK, out)
}

func (r *Router) DeleteEntry(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	id, ok := entryID(w, req)
	if !ok {
		return
	}

	if err := r.service.DeleteEntry(ctx, middleware.GetUserID(ctx), id); err != nil {
		logger.Error().Err(err).Int("entry_id", id).Msg("Error deleting log entry")
		WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// WriteServiceError maps diary errors to HTTP status codes.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.WriteError(w, http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrInvalidDate):
		response.WriteError(w, http.StatusBadRequest, ErrInvalidDate.Error())
	case errors.Is(err, ErrNoItems):
		response.WriteError(w, http.StatusBadRequest, ErrNoItems.Error())
	case errors.Is(err, ErrInvalidItem):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func entryID(w http.ResponseWriter, req *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(req, "id"))
	if err != nil || id <= 0 {
		response.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return 0, false
	}
	return id, true
}
