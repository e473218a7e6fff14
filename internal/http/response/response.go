// Package response writes JSON responses for handlers that run outside huma,
// such as router middleware. Bodies use the same {code,message,details} error
// shape as the API.
package response

import (
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    domainerrors.Code `json:"code"`
	Message string            `json:"message"`
	Details any               `json:"details,omitempty"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Error writes a domain error with the status its code maps to.
func Error(w http.ResponseWriter, err *domainerrors.Error, logger *slog.Logger) {
	JSON(w, err.HTTPStatus(), ErrorBody{
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
	}, logger)
}

// NotFound handles requests that match no route.
func NotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Error(w, domainerrors.NotFoundf("no route for %s %s", r.Method, r.URL.Path), logger)
	}
}

// MethodNotAllowed handles requests whose path exists under another method.
func MethodNotAllowed(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusMethodNotAllowed, ErrorBody{
			Code:    domainerrors.CodeValidation,
			Message: "method " + r.Method + " not allowed",
		}, logger)
	}
}
