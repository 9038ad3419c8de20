package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/wire"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes. Engine rejections use the upper-cased engine code, e.g. OUT_OF_TURN.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidAction      = "INVALID_ACTION"
	CodePlayerRequired     = "PLAYER_REQUIRED"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomAborted        = "ROOM_ABORTED"
	CodeRoomClosed         = "ROOM_CLOSED"
	CodeHandInProgress     = "HAND_IN_PROGRESS"
	CodeInvalidRoom        = "INVALID_ROOM"
	CodeUnknownBotStrategy = "UNKNOWN_BOT_STRATEGY"
	CodeHandNotFound       = "HAND_NOT_FOUND"
	CodeTimeout            = "TIMEOUT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Room errors come first: an aborted room wraps the invariant that aborted it
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomAborted):
		return &httpError{http.StatusGone, APIError{CodeRoomAborted, "Room was aborted"}}
	case errors.Is(err, model.ErrRoomClosed):
		return &httpError{http.StatusGone, APIError{CodeRoomClosed, "Room is closed"}}
	case errors.Is(err, model.ErrHandInProgress):
		return &httpError{http.StatusConflict, APIError{CodeHandInProgress, "A hand is in progress"}}
	case errors.Is(err, model.ErrInvalidRoom):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRoom, err.Error()}}
	case errors.Is(err, model.ErrUnknownBotStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownBotStrategy, err.Error()}}
	case errors.Is(err, model.ErrHandNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeHandNotFound, "Hand not found"}}
	case errors.Is(err, wire.ErrInvalidAction):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAction, err.Error()}}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &httpError{http.StatusGatewayTimeout, APIError{CodeTimeout, "Request timed out"}}
	}

	// Map engine rejections
	if code := tarot.ErrorCode(err); code != "" && !tarot.IsInvariant(err) {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, tarot.ErrOutOfTurn), errors.Is(err, tarot.ErrAwaitingAcknowledgement):
			status = http.StatusConflict
		case errors.Is(err, tarot.ErrPlayerNotInGame):
			status = http.StatusForbidden
		}
		return &httpError{status, APIError{strings.ToUpper(code), err.Error()}}
	}

	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewPlayerRequiredError creates the error for player-only routes called without an identity
func NewPlayerRequiredError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodePlayerRequired, "X-Player-ID header required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
