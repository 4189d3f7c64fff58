// Package http serves the tracker's JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the mapping from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/services"
	"tracker/internal/store"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       interface{}
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v interface{}) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {message, warning?} body, the shape every mutation returns.
func (b *JSONResponseBuilder) Message(msg, warning string) *JSONResponseBuilder {
	return b.Body(MessageResponse{Message: msg, Warning: warning})
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
	Warning string `json:"warning,omitempty"`
	Token   string `json:"token,omitempty"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard {error} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(ErrorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message).Header("WWW-Authenticate", "Bearer")
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

var validationErrors = []error{
	core.ErrInvalidType,
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidMonth,
	core.ErrEmptyCategory,
	core.ErrNotesTooLong,
	core.ErrEmptyUsername,
	core.ErrPasswordTooWeak,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorFor maps a service error to its response. internalMsg is shown for
// anything unexpected so store details never reach the client.
func errorFor(err error, internalMsg string) (*JSONResponseBuilder, string) {
	switch {
	case isValidation(err):
		return UnprocessableEntityError(err.Error()), log.ErrorTypeValidation
	case errors.Is(err, errMalformedBody):
		return BadRequestError("Invalid request body"), log.ErrorTypeValidation
	case errors.Is(err, store.ErrNotFound):
		return NotFoundError("Not found"), log.ErrorTypeNotFound
	case errors.Is(err, services.ErrUsernameTaken):
		return BadRequestError("Username already exists"), log.ErrorTypeConflict
	case errors.Is(err, services.ErrUserNotFound):
		return UnauthorizedError("User not found"), log.ErrorTypeAuth
	case errors.Is(err, services.ErrInvalidCredentials):
		return UnauthorizedError("Invalid password"), log.ErrorTypeAuth
	case errors.Is(err, services.ErrInvalidToken):
		return UnauthorizedError("Invalid token"), log.ErrorTypeAuth
	default:
		return InternalServerError(internalMsg), log.ErrorTypeInternal
	}
}

// respondError writes the mapped error and logs it at a level matching the
// status.
func respondError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	resp, kind := errorFor(err, internalMsg)
	logger := log.FromContext(r.Context())
	if resp.statusCode >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), internalMsg, log.FieldError, err, log.FieldErrorType, kind)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldError, err, log.FieldErrorType, kind, log.FieldStatusCode, resp.statusCode)
	}
	resp.Write(w)
}
