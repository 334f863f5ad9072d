package core

import (
	"time"

	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
)

// ValidateForSubmit checks that a draft carries everything a reviewer
// needs before it may enter the pending queue. Every failure is reported
// at once, field by field.
func ValidateForSubmit(r *models.Reservation) error {
	var fields []errmsg.FieldError

	if r.Title == "" {
		fields = append(fields, errmsg.FieldError{
			Field: "title", Message: "a title is required",
		})
	}
	if r.StartDateTime.IsZero() {
		fields = append(fields, errmsg.FieldError{
			Field: "startDateTime", Message: "a start time is required",
		})
	}
	if r.EndDateTime.IsZero() {
		fields = append(fields, errmsg.FieldError{
			Field: "endDateTime", Message: "an end time is required",
		})
	}
	if !r.StartDateTime.IsZero() && !r.EndDateTime.IsZero() &&
		!r.EndDateTime.After(r.StartDateTime) {
		fields = append(fields, errmsg.FieldError{
			Field: "endDateTime", Message: "the end time must be after the start time",
		})
	}
	if len(r.Rooms) == 0 {
		fields = append(fields, errmsg.FieldError{
			Field: "rooms", Message: "at least one room is required",
		})
	}
	if len(r.Categories) == 0 {
		fields = append(fields, errmsg.FieldError{
			Field: "categories", Message: "at least one category is required",
		})
	}
	if r.SetupMinutes <= 0 {
		fields = append(fields, errmsg.FieldError{
			Field: "setupMinutes", Message: "a setup time is required",
		})
	}
	if r.DoorOpenMinutes <= 0 {
		fields = append(fields, errmsg.FieldError{
			Field: "doorOpenMinutes", Message: "a door-open time is required",
		})
	}

	if len(fields) > 0 {
		return errmsg.Validation(fields)
	}

	return nil
}

// validatePatch rejects a patch whose resulting time window would be
// inverted or whose strings would blank out required fields.
func validatePatch(r *models.Reservation, patch Patch) error {
	var fields []errmsg.FieldError

	start := r.StartDateTime
	end := r.EndDateTime
	if v, ok := patch["startDateTime"]; ok {
		start = v.(time.Time)
	}
	if v, ok := patch["endDateTime"]; ok {
		end = v.(time.Time)
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		fields = append(fields, errmsg.FieldError{
			Field: "endDateTime", Message: "the end time must be after the start time",
		})
	}

	if v, ok := patch["title"]; ok && v.(string) == "" {
		fields = append(fields, errmsg.FieldError{
			Field: "title", Message: "the title cannot be removed",
		})
	}

	if len(fields) > 0 {
		return errmsg.Validation(fields)
	}

	return nil
}
