package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ducnv-dev/shoestore-backend/internal/customer"
	"github.com/ducnv-dev/shoestore-backend/internal/order"
	"github.com/ducnv-dev/shoestore-backend/internal/product"
	"github.com/ducnv-dev/shoestore-backend/internal/validate"
)

// errorResponse is the error body shape the frontend expects. Detail is only
// populated in dev builds.
type errorResponse struct {
	StatusCode int                   `json:"statusCode"`
	Message    string                `json:"message"`
	Errors     []validate.FieldError `json:"errors,omitempty"`
	Detail     string                `json:"detail,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":500,"message":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

// errorWriter owns the error-kind to transport-status mapping. It is the only
// place allowed to decide what error detail leaves the process.
type errorWriter struct {
	dev bool
}

func (e errorWriter) respondError(w http.ResponseWriter, err error) {
	code := statusForError(err)

	resp := errorResponse{
		StatusCode: code,
		Message:    err.Error(),
	}

	if ve, ok := validate.AsErrors(err); ok {
		resp.Errors = ve.Fields
	}

	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		resp.Message = http.StatusText(http.StatusInternalServerError)
		if e.dev {
			resp.Detail = err.Error()
		}
	}

	respondWithJSON(w, code, resp)
}

func statusForError(err error) int {
	if _, ok := validate.AsErrors(err); ok {
		return http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, customer.ErrOrderRefNotFound):
		return http.StatusNotFound
	case errors.Is(err, product.ErrNameExists),
		errors.Is(err, customer.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, customer.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, order.ErrStatusAlreadySet),
		errors.Is(err, order.ErrTotalMismatch),
		errors.Is(err, customer.ErrInvalidRole):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrInvalidID),
		errors.Is(err, product.ErrInvalidID),
		errors.Is(err, customer.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    "invalid request body",
		})
		return false
	}
	return true
}

// pageParams coerces page/limit query values, falling back to 1 and
// defaultLimit on anything that is not a positive integer.
func pageParams(r *http.Request, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
