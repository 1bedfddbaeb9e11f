package domain

import (
	"errors"
	"fmt"
)

// Messages surfaced to the user when the backend cannot be reached or does
// not explain its failure.
const (
	NetworkErrorMessage = "No response from server. Please check if the backend is running."
	ServerErrorFallback = "Server error occurred"
)

var (
	// ErrStorageCorrupt marks persisted history that failed to decode. It is
	// logged and swallowed; the history starts empty.
	ErrStorageCorrupt = errors.New("stored history is corrupt")

	// ErrPredictionInFlight rejects a submission while another is pending.
	ErrPredictionInFlight = errors.New("a prediction is already in progress")

	// ErrNotFound is returned when an assessment ID is not in history.
	ErrNotFound = errors.New("assessment not found")
)

// NetworkError means no response was received: the backend was unreachable
// or the request timed out.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return NetworkErrorMessage }

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Message comes from the body's "detail"
// or "message" field when present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// InvalidSelectionError rejects a comparison whose selection is not exactly
// two assessments.
type InvalidSelectionError struct {
	Count int
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("comparison requires exactly 2 selected predictions, got %d", e.Count)
}
