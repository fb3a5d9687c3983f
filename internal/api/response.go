package api

import (
	"encoding/json"
	"net/http"

	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
	"github.com/pdxmph/hangs-tui/internal/logger"
)

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

func writeEnvelope(w http.ResponseWriter, status int, envelope Envelope, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		log.WithError(err).Error("encoding JSON response")
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, log *logger.Logger) {
	writeEnvelope(w, status, Envelope{Success: status < 400, Data: data}, log)
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, log *logger.Logger) {
	JSON(w, http.StatusOK, data, log)
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, data any, log *logger.Logger) {
	JSON(w, http.StatusCreated, data, log)
}

// NoContent writes a no content response (204 No Content).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, message string, log *logger.Logger) {
	writeEnvelope(w, status, Envelope{Error: message}, log)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, log *logger.Logger) {
	Error(w, http.StatusBadRequest, message, log)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain errors are mapped to their HTTP codes, unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, log *logger.Logger) {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		writeEnvelope(w, domainErr.HTTPStatus(), Envelope{
			Error:   domainErr.Message,
			Code:    string(domainErr.Code),
			Details: domainErr.Details,
		}, log)
		return
	}

	log.WithError(err).Error("unhandled error")
	Error(w, http.StatusInternalServerError, "internal server error", log)
}

// decode reads a JSON request body, rejecting unknown fields
func decode(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return domainerrors.Validation("invalid request body: " + err.Error())
	}
	return nil
}
