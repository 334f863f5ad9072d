package core

import (
	"context"

	"roomdesk/internal/errmsg"
	"roomdesk/internal/events"
	"roomdesk/internal/models"
	"roomdesk/internal/notify"

	"go.mongodb.org/mongo-driver/bson"
)

// ResolveRestoreTarget walks the status history backward and returns the
// most recent status that differs from the current terminal one, falling
// back to draft when none exists. The history is the sole source of truth
// for "what was this before".
func ResolveRestoreTarget(history []models.StatusHistoryEntry, current models.Status) models.Status {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Status != current {
			return history[i].Status
		}
	}
	return models.StatusDraft
}

// Restore brings a deleted or cancelled reservation back to the status it
// held before removal. Admins may restore any record and may force past
// the conflict check; owners may restore only their own and never force.
// A record that ever carried external calendar linkage is mirrored
// outward again as a fresh external event, whatever status it returns to.
func Restore(ctx context.Context, actor *models.Account, eventID string, version int64, force bool) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionRestore); err != nil {
		return nil, err
	}
	if r.Status != models.StatusDeleted && r.Status != models.StatusCancelled {
		return nil, errmsg.ReservationNotRemoved
	}

	target := ResolveRestoreTarget(r.StatusHistory, r.Status)

	if target == models.StatusPending || target == models.StatusPublished {
		if !mayForceConflicts(actor, ActionRestore) {
			force = false
		}
		if err := checkConflicts(ctx, r, nil, force); err != nil {
			return nil, err
		}
	}

	set := bson.M{"status": target}
	unset := bson.M{}
	if r.Status == models.StatusDeleted {
		// deletion metadata is cleared only when returning from
		// deleted, not from cancelled
		set["isDeleted"] = false
		unset["deletedAt"] = ""
		unset["deletedBy"] = ""
	}

	expectedStatus := r.Status
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set:   set,
		Unset: unset,
		Push:  models.HistoryEntryPush(historyEntry(actor, target, "restored")),
		Guard: models.UpdateGuard{
			ExpectedVersion: &version,
			ExpectedStatus:  &expectedStatus,
			ModifiedBy:      actor.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Reservation: updated}
	if r.GraphData != nil {
		result.Reservation, result.CalendarSynced = syncCreate(ctx, updated)
	}

	events.Em.ReservationRestored(actor, r, result.Reservation, target, result.CalendarSynced)
	notify.Dispatch("reservation.restored", result.Reservation, nil)

	return result, nil
}
