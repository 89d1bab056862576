package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"fencecost/internal/errors"
)

// codeInvalidJSON marks request bodies that could not be decoded
const codeInvalidJSON = "INVALID_JSON"

// APIError is the canonical JSON error envelope returned by the API.
type APIError struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewAPIError constructs an APIError
func NewAPIError(code, message string, status int) APIError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return APIError{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// WithDetails attaches additional JSON-serialisable metadata.
func (e APIError) WithDetails(details map[string]any) APIError {
	if len(details) == 0 {
		return e
	}
	copyDetails := make(map[string]any, len(details))
	for k, v := range details {
		copyDetails[k] = v
	}
	e.Details = copyDetails
	return e
}

// fromError maps a domain error to its wire form. Pricebook lookups fail as
// 400 because the request named an unknown SKU; quote lookups pass
// lookupStatus 404.
func fromError(err error, lookupStatus int) APIError {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return NewAPIError(string(errors.TypeInternal), "internal error", http.StatusInternalServerError)
	}

	var status int
	message := e.Message
	switch e.Type {
	case errors.TypeValidation, errors.TypeParsing:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = lookupStatus
	case errors.TypeConfig, errors.TypeStorage, errors.TypeInternal:
		status = http.StatusInternalServerError
		message = "internal error"
	default:
		status = http.StatusInternalServerError
	}

	apiErr := NewAPIError(string(e.Type), message, status)
	if status < http.StatusInternalServerError {
		details := make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			details[k] = v
		}
		apiErr = apiErr.WithDetails(details)
	}
	return apiErr
}

// WriteError writes the structured error as JSON to the provided response writer.
func WriteError(ctx context.Context, w http.ResponseWriter, err APIError) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  status,
	}
	if requestID := sanitize(middleware.GetReqID(ctx), 80); requestID != "" {
		payload["request_id"] = requestID
	}
	for k, v := range err.Details {
		if _, reserved := payload[k]; !reserved {
			payload[k] = v
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(value[cut]) {
			cut--
		}
		value = value[:cut]
	}
	return value
}
