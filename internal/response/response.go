// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rameshdebur/filebucket/internal/apperror"
)

// Stable machine-readable error codes.
const (
	CodeValidation          = "validation_error"
	CodeUnauthorized        = "unauthorized"
	CodeNotFound            = "not_found"
	CodeExpired             = "expired"
	CodeSizeLimit           = "size_limit_exceeded"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal_error"
	CodeAllocationExhausted = "allocation_exhausted"
)

// Envelope is the standard API response envelope.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Error writes an error response with the given status, code and message.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Envelope{Success: false, Error: message, Code: code})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeValidation, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}

// FromError maps err onto the error taxonomy and writes the matching
// response. Unrecognised errors are logged and reported as 500 without detail.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	Error(w, status, code, message)
}

func classify(err error) (status int, code, message string) {
	detail, hasDetail := apperror.Message(err)
	pick := func(fallback string) string {
		if hasDetail {
			return detail
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, CodeValidation, pick("invalid request")
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, pick("unauthorized")
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, pick("not found")
	case errors.Is(err, apperror.ErrExpired):
		return http.StatusGone, CodeExpired, pick("bucket has expired")
	case errors.Is(err, apperror.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge, CodeSizeLimit, pick("upload exceeds size limit")
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimited, pick("too many attempts, try again later")
	case errors.Is(err, apperror.ErrAllocationExhausted):
		return http.StatusServiceUnavailable, CodeAllocationExhausted, "could not allocate a PIN, try again"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal server error"
	}
}
