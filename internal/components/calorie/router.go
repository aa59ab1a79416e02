package calorie

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/andrasnagy-data/voicelog/internal/shared/response"
)

type (
	EstimateOut struct {
		Calories int `json:"calories"`
	}

	DifferenceIn struct {
		Original Estimated `json:"original"`
		Updated  Input     `json:"updated"`
	}

	DifferenceOut struct {
		Difference int `json:"difference"`
		Calories   int `json:"calories"`
	}

	Router struct{}
)

func NewRouter() chi.Router {
	router := &Router{}
	return router.Routes()
}

func (r *Router) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/estimate", r.Estimate)
	router.Post("/difference", r.Difference)
	return router
}

func (r *Router) Estimate(w http.ResponseWriter, req *http.Request) {
	var in Input
	err := decode(req, &in)
	if err == nil {
		err = validate(in)
	}
	if err != nil {
		hlog.FromRequest(req).Warn().Err(err).Msg("Invalid estimate request")
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, EstimateOut{Calories: Estimate(in)})
}

// Difference reports how far a fresh estimate of the updated activity is
// from the calories stored for the original.
func (r *Router) Difference(w http.ResponseWriter, req *http.Request) {
	var in DifferenceIn
	err := decode(req, &in)
	if err == nil {
		err = validate(in.Original.Input)
	}
	if err == nil {
		err = validate(in.Updated)
	}
	if err != nil {
		hlog.FromRequest(req).Warn().Err(err).Msg("Invalid difference request")
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, DifferenceOut{
		Difference: Difference(in.Original, in.Updated),
		Calories:   Estimate(in.Updated),
	})
}

var errInvalidBody = errors.New("invalid request body")

func decode(req *http.Request, dst any) error {
	if err := response.DecodeJSON(req, dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func validate(in Input) error {
	if in.ActivityType == "" {
		return errors.New("activity_type is required")
	}
	if in.Intensity != nil && !in.Intensity.Valid() {
		return fmt.Errorf("unknown intensity %q", *in.Intensity)
	}
	return nil
}
