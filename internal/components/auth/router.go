package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/andrasnagy-data/voicelog/internal/shared/cookie"
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
	router.Post("/login", r.Login)
	router.Post("/logout", r.Logout)
	return router
}

func (r *Router) Login(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	var in LoginRequest
	if err := response.DecodeJSON(req, &in); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logger.Debug().Str("username", in.Username).Msg("Login attempt")

	user, err := r.service.ValidateCredentials(ctx, in.Username, in.Password)
	if err != nil {
		logger.Warn().Err(err).Str("username", in.Username).Msg("Login failed: invalid credentials")
		if errors.Is(err, ErrInvalidCredentials) {
			response.WriteError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
			return
		}
		response.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := cookie.SetCookie(w, user.ID, r.service.SecretKey(), r.service.SecureCookies()); err != nil {
		logger.Error().Err(err).Str("username", in.Username).Msg("Login failed: could not set cookie")
		response.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	logger.Debug().Str("username", user.Username).Str("user_id", user.ID.String()).Msg("Login successful")
	response.WriteJSON(w, http.StatusOK, LoginResponse{UserID: user.ID, Username: user.Username})
}

func (r *Router) Logout(w http.ResponseWriter, req *http.Request) {
	cookie.ClearCookie(w, r.service.SecureCookies())
	hlog.FromRequest(req).Debug().Msg("Logged out")
	w.WriteHeader(http.StatusNoContent)
}
