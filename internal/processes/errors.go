package processes

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scrivener/internal/providers"
)

// Domain errors for process operations.
var (
	ErrNotFound      = errors.New("process not found")
	ErrDuplicate     = errors.New("process already exists")
	ErrInvalidRecord = errors.New("process record rejected by the database")
	ErrInvalidID     = errors.New("invalid process id")
	ErrInvalidFile   = errors.New("invalid file")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidConfig = errors.New("invalid process configuration")
	ErrInvalidStatus = errors.New("invalid process status")
	ErrTerminal      = errors.New("process already finished")
	ErrNotCompleted  = errors.New("process has not completed")
	ErrRunTimeout    = errors.New("translation timed out")
	ErrCanceled      = errors.New("process canceled")
)

// MapHTTPStatus maps process domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrTerminal),
		errors.Is(err, ErrNotCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, providers.ErrUnknownAdapter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
