package voice

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/andrasnagy-data/voicelog/internal/components/diary"
	"github.com/andrasnagy-data/voicelog/internal/shared/middleware"
	"github.com/andrasnagy-data/voicelog/internal/shared/response"
)

type (
	Router struct {
		service servicer
	}
)

func NewRouter(service servicer) chi.Router {
	router := &Router{service: service}
	return router.Routes()
}

func (r *Router) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/process", r.Process)
	return router
}

// Process turns a transcript into diary entries and returns them with 201.
func (r *Router) Process(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	var in ProcessVoiceIn
	if err := response.DecodeJSON(req, &in); err != nil {
		logger.Warn().Err(err).Msg("Invalid voice request body")
		response.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := r.service.Process(ctx, middleware.GetUserID(ctx), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyTranscript):
			response.WriteError(w, http.StatusBadRequest, ErrEmptyTranscript.Error())
		case errors.Is(err, ErrExtraction):
			logger.Error().Err(err).Msg("Transcript extraction failed")
			response.WriteError(w, http.StatusBadGateway, ErrExtraction.Error())
		default:
			logger.Error().Err(err).Msg("Error processing transcript")
			diary.WriteServiceError(w, err)
		}
		return
	}

	logger.Info().Int("log_entries", len(out.LogEntries)).Msg("Transcript processed")
	response.WriteJSON(w, http.StatusCreated, out)
}
