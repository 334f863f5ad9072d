package errmsg

import (
	"fmt"
	"net/http"
	"time"
)

// ConflictSummary describes one published reservation blocking a room/time window.
type ConflictSummary struct {
	ID            string    `json:"id"`
	EventTitle    string    `json:"eventTitle"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
	Rooms         []string  `json:"rooms"`
	Status        string    `json:"status"`
}

// SchedulingConflictError is returned when a room/time window is already
// occupied by one or more published reservations.
type SchedulingConflictError struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"message"`
	Conflicts  []ConflictSummary `json:"conflicts"`
	Version    int64             `json:"_version"`
}

func (e *SchedulingConflictError) Error() string {
	return e.Message
}

func SchedulingConflict(conflicts []ConflictSummary, version int64) *SchedulingConflictError {
	return &SchedulingConflictError{
		StatusCode: http.StatusConflict,
		Message: fmt.Sprintf(
			"the requested rooms are already reserved by %d published event(s) in that time window",
			len(conflicts),
		),
		Conflicts: conflicts,
		Version:   version,
	}
}

// VersionConflictError is returned when an optimistic-concurrency check
// fails. It always carries the version and status currently stored so the
// caller can re-read and reconcile.
type VersionConflictError struct {
	StatusCode     int    `json:"-"`
	Message        string `json:"message"`
	CurrentVersion int64  `json:"currentVersion"`
	CurrentStatus  string `json:"currentStatus"`
}

func (e *VersionConflictError) Error() string {
	return e.Message
}

func VersionConflict(currentVersion int64, currentStatus string) *VersionConflictError {
	return &VersionConflictError{
		StatusCode:     http.StatusConflict,
		Message:        "the reservation was modified by someone else - reload and try again",
		CurrentVersion: currentVersion,
		CurrentStatus:  currentStatus,
	}
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every missing or invalid field detected before a
// transition is attempted.
type ValidationError struct {
	StatusCode int          `json:"-"`
	Message    string       `json:"message"`
	Fields     []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(fields []FieldError) *ValidationError {
	return &ValidationError{
		StatusCode: http.StatusBadRequest,
		Message:    "the reservation is missing required information",
		Fields:     fields,
	}
}

type _SchedulingConflict struct {
	Error    string `json:"error" example:"SchedulingConflict"`
	Message  string `json:"message" example:"the requested rooms are already reserved by 1 published event(s) in that time window"`
	Version  int64  `json:"_version" example:"3"`
}

type _VersionConflict struct {
	Error          string `json:"error" example:"VERSION_CONFLICT"`
	Message        string `json:"message" example:"the reservation was modified by someone else - reload and try again"`
	ConflictType   string `json:"conflictType" example:"data_changed"`
	CurrentVersion int64  `json:"currentVersion" example:"2"`
}
