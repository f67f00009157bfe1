// Package http provides the JSON API of the budget service.
//
// This file implements a small builder for JSON responses and the mapping
// from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"orcamento/internal/auth"
	"orcamento/internal/core"
	applog "orcamento/internal/log"
	"orcamento/internal/services"
	"orcamento/internal/store"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// errorBody is the shape of every error response. Form and Field are set for
// validation errors so clients can attach the message to the right input.
type errorBody struct {
	Form   string `json:"form,omitempty"`
	Field  string `json:"field,omitempty"`
	Error  string `json:"error"`
	Notice string `json:"notice,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// ValidationErrorResponse creates a 422 response naming the offending input.
func ValidationErrorResponse(ve *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Body(errorBody{Form: ve.Form, Field: ve.Field, Error: ve.Err.Error()})
}

// statusFor maps service errors to a status code and a client-facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, services.ErrUnauthorized.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, auth.ErrInvalidCredentials.Error()
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict, store.ErrEmailTaken.Error()
	case errors.Is(err, services.ErrSaveInProgress):
		return http.StatusConflict, services.ErrSaveInProgress.Error()
	case errors.Is(err, services.ErrItemNotFound):
		return http.StatusNotFound, services.ErrItemNotFound.Error()
	case errors.Is(err, services.ErrInvalidPeriod):
		return http.StatusBadRequest, services.ErrInvalidPeriod.Error()
	case errors.Is(err, services.ErrSaveFailed):
		return http.StatusBadGateway, services.ErrSaveFailed.Error()
	case errors.Is(err, services.ErrLoadFailed):
		return http.StatusBadGateway, services.ErrLoadFailed.Error()
	case errors.Is(err, services.ErrAuthUnavailable):
		return http.StatusBadGateway, services.ErrAuthUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeError writes err as a JSON error response. Unexpected errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		ValidationErrorResponse(ve).Write(w)
		return
	}

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
	}

	body := errorBody{Error: msg}
	switch {
	case errors.Is(err, services.ErrSaveFailed):
		body.Notice = "Não foi possível salvar seus dados. Suas alterações continuam nesta sessão."
	case errors.Is(err, services.ErrAuthUnavailable):
		body.Notice = "O serviço de autenticação está indisponível. Tente novamente em instantes."
	}
	NewJSONResponse().Status(status).Body(body).Write(w)
}
