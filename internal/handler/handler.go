package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"shopfront/internal/auth"
	"shopfront/internal/middleware"
	"shopfront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeData wraps data in the success envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.SuccessResponse{Success: true, Data: data})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation, model.KindBusinessRule:
		return http.StatusBadRequest
	case model.KindUnauthenticated:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err in the error envelope. Errors that are not domain
// errors are logged and reported as INTERNAL_ERROR without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	requestID := middleware.RequestIDFromContext(r.Context())

	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", requestID).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:         "internal server error",
			Code:          model.ErrCodeInternalError,
			CorrelationID: requestID,
		})
		return
	}

	status := statusFor(domainErr.Kind)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("code", domainErr.Code).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("request_id", requestID).
		Msg(domainErr.Message)

	writeJSON(w, status, model.ErrorResponse{
		Error:         domainErr.Message,
		Code:          domainErr.Code,
		Details:       domainErr.Details,
		CorrelationID: requestID,
	})
}

var errInvalidJSON = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid request body")

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errInvalidJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}

// uuidParam parses a chi URL parameter. Malformed ids are reported as notFound
// since no such record can exist.
func uuidParam(r *http.Request, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// userID returns the authenticated caller's id.
func userID(r *http.Request) (string, error) {
	principal, ok := auth.FromContext(r.Context())
	if !ok || principal.ID == "" {
		return "", model.ErrUnauthenticated
	}
	return principal.ID, nil
}

var errRouteNotFound = model.NewDomainError(model.KindNotFound, model.ErrCodeNotFound, "route not found")

// NotFound renders unknown routes in the error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{
		Error:         errRouteNotFound.Message,
		Code:          errRouteNotFound.Code,
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	})
}

// MethodNotAllowed renders 405 responses in the error envelope.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{
		Error:         "method not allowed",
		Code:          "METHOD_NOT_ALLOWED",
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	})
}
