package core

import (
	"context"
	"time"

	"roomdesk/internal/errmsg"
	"roomdesk/internal/events"
	"roomdesk/internal/models"
	"roomdesk/internal/notify"

	"go.mongodb.org/mongo-driver/bson"
)

// Publish confirms a pending reservation, making it the occupant of its
// rooms. The review-phase change set is read exactly once here: it is
// returned to the caller, attached to the audit entry, and cleared from
// the record in the same conditional update. The force flag skips the
// conflict check and is honored only for reviewers.
func Publish(ctx context.Context, actor *models.Account, eventID string, version int64, force bool) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionPublish); err != nil {
		return nil, err
	}
	if r.Status != models.StatusPending {
		return nil, errmsg.ReservationNotPending
	}

	if !mayForceConflicts(actor, ActionPublish) {
		force = false
	}
	if err := checkConflicts(ctx, r, nil, force); err != nil {
		return nil, err
	}

	reviewChanges := r.RoomReservationData.ReviewChanges

	now := time.Now().UTC()
	expectedStatus := models.StatusPending
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set: bson.M{
			"status":     models.StatusPublished,
			"reviewedAt": now,
			"reviewedBy": actor.ID,
		},
		Unset: bson.M{"roomReservationData.reviewChanges": ""},
		Push:  models.HistoryEntryPush(historyEntry(actor, models.StatusPublished, "")),
		Guard: models.UpdateGuard{
			ExpectedVersion: &version,
			ExpectedStatus:  &expectedStatus,
			ModifiedBy:      actor.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Reservation:   updated,
		ReviewChanges: reviewChanges,
	}

	if updated.GraphData == nil {
		result.Reservation, result.CalendarSynced = syncCreate(ctx, updated)
	} else {
		result.CalendarSynced = syncUpdate(ctx, updated, Patch{
			"title":         updated.Title,
			"startDateTime": updated.StartDateTime,
			"endDateTime":   updated.EndDateTime,
		})
	}

	events.Em.ReservationPublished(actor, r, result.Reservation, reviewChanges, result.CalendarSynced)
	notify.Dispatch("reservation.published", result.Reservation, reviewChanges)

	return result, nil
}
