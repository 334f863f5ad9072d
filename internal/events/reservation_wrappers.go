package events

import (
	"roomdesk/internal/models"
)

// ReservationCreated records the insertion of a new draft.
func (e *Emitter) ReservationCreated(actor *models.Account, r *models.Reservation) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          r.EventID,
		Action:           "reservation.created",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		NewState:         r,
	})
}

// ReservationSubmitted records a draft entering the pending queue (or,
// for reviewer submissions, going straight to published).
func (e *Emitter) ReservationSubmitted(actor *models.Account, before, after *models.Reservation) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           "reservation.submitted",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
		Metadata: map[string]any{
			"resultingStatus": after.Status,
		},
	})
}

// ReservationEdited records any field-level edit; the action string
// distinguishes plain edits, reviewer edits, and resubmit-with-edits.
func (e *Emitter) ReservationEdited(actor *models.Account, action string, before, after *models.Reservation, changes []models.Change) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           action,
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
		Changes:          changes,
	})
}

// ReservationPublished records a publish, the only action that carries
// the review-phase change set.
func (e *Emitter) ReservationPublished(actor *models.Account, before, after *models.Reservation, reviewChanges []models.Change, synced bool) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           "reservation.published",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
		ReviewChanges:    reviewChanges,
		Metadata: map[string]any{
			"calendarSynced": synced,
		},
	})
}

func (e *Emitter) ReservationRejected(actor *models.Account, before, after *models.Reservation, reason string) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           "reservation.rejected",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
		Metadata: map[string]any{
			"reason": reason,
		},
	})
}

func (e *Emitter) ReservationResubmitted(actor *models.Account, before, after *models.Reservation) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           "reservation.resubmitted",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
	})
}

// EditRequested records a requester's change proposal on a published
// reservation.
func (e *Emitter) EditRequested(actor *models.Account, r *models.Reservation, requested map[string]any, reason string) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          r.EventID,
		Action:           "reservation.edit_requested",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		NewState:         r,
		Metadata: map[string]any{
			"requestedChanges": requested,
			"reason":           reason,
		},
	})
}

func (e *Emitter) EditRequestApproved(actor *models.Account, before, after *models.Reservation, changes []models.Change) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           "reservation.edit_request_approved",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
		Changes:          changes,
	})
}

func (e *Emitter) EditRequestRejected(actor *models.Account, r *models.Reservation, reason string) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          r.EventID,
		Action:           "reservation.edit_request_rejected",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		NewState:         r,
		Metadata: map[string]any{
			"reason": reason,
		},
	})
}

// ReservationRemoved records a soft deletion or an owner cancellation.
func (e *Emitter) ReservationRemoved(actor *models.Account, before, after *models.Reservation, reason string) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           "reservation.removed",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
		Metadata: map[string]any{
			"resultingStatus": after.Status,
			"reason":          reason,
		},
	})
}

// ReservationRestored records a removed record returning to its resolved
// prior status.
func (e *Emitter) ReservationRestored(actor *models.Account, before, after *models.Reservation, target models.Status, synced bool) {
	if e == nil {
		return
	}

	e.Emit(models.AuditEntry{
		EventID:          after.EventID,
		Action:           "reservation.restored",
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		PreviousState:    before,
		NewState:         after,
		Metadata: map[string]any{
			"restoredTo":     target,
			"calendarSynced": synced,
		},
	})
}
