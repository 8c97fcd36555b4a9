package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

type FavoriteController struct {
	Logger  *slog.Logger
	Service domain.FavoriteService
}

func NewFavoriteController(logger *slog.Logger, svc domain.FavoriteService) *FavoriteController {
	return &FavoriteController{
		Logger:  logger,
		Service: svc,
	}
}

// ToggleFavoriteResponse is the success payload for POST /events/{eventID}/favorite.
type ToggleFavoriteResponse struct {
	Favorited bool `json:"favorited"`
}

// Toggle godoc
// @Summary Toggle a favorite on an event
// @Description Flips the authenticated user's favorite flag for the event and returns the new state. Calling it twice returns to the original state.
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the new favorited flag"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/favorite [post]
func (c *FavoriteController) Toggle(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	favorited, err := c.Service.Toggle(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrAlreadyFavorited) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event already favorited")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleFavoriteResponse{Favorited: favorited})
}

// ListMyFavoritesSuccessResponse is the success response envelope for GET /me/favorites (200).
type ListMyFavoritesSuccessResponse struct {
	Data  []*domain.FavoriteWithEvent `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListMyFavorites godoc
// @Summary List the current user's favorites
// @Description Returns the authenticated user's favorites, each with its event.
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyFavoritesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/favorites [get]
func (c *FavoriteController) ListMyFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	items, err := c.Service.ListMyFavorites(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}
