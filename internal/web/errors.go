package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusFor(err))
//  3. Error is mapped via messages to get a user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is written as JSON

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/logging"
	"github.com/JonMunkholm/deeptable/internal/source"
	"github.com/JonMunkholm/deeptable/internal/view"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errInvalidBody = errors.New("invalid request body")
	errNoLoader    = errors.New("reload is not available for this dataset")
)

// messages maps every error a handler can meet: the engine and source
// catalogs plus the session errors of this package.
var messages = source.Messages.With([]view.SentinelMessage{
	{Target: ErrSessionNotFound, Msg: view.UserMessage{
		Message: "View session not found",
		Action:  "The view may have expired. Please open it again",
		Code:    "VIEW001",
	}},
	{Target: ErrTooManySessions, Msg: view.UserMessage{
		Message: "Too many open views",
		Action:  "Please wait a moment and try again",
		Code:    "VIEW002",
	}},
	{Target: errRateLimited, Msg: view.UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "VIEW003",
	}},
	{Target: context.DeadlineExceeded, Msg: view.UserMessage{
		Message: "Request timed out",
		Action:  "Please try again",
		Code:    "VIEW004",
	}},
	{Target: ErrTooManyLoads, Msg: view.UserMessage{
		Message: "The data source is busy",
		Action:  "Please wait a moment and reload again",
		Code:    "VIEW005",
	}},
	{Target: errInvalidBody, Msg: view.UserMessage{
		Message: "The request could not be read",
		Action:  "Send a JSON body with the documented fields",
		Code:    "VIEW006",
	}},
	{Target: errNoLoader, Msg: view.UserMessage{
		Message: "This view cannot be reloaded",
		Action:  "Open a new view to see the latest data",
		Code:    "VIEW007",
	}},
}, nil)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes the mapped
// user message as JSON.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := messages.Map(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor picks the HTTP status of an error returned by a session
// operation.
func statusFor(err error) int {
	var cfgErr *view.ConfigError
	var mutErr *view.MutationError

	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, view.ErrRowOutOfRange),
		errors.Is(err, column.ErrUnknownColumn):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManySessions), errors.Is(err, ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errNoLoader):
		return http.StatusNotImplemented
	case errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &mutErr), errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
