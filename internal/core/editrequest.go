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

// RequestEdit attaches a requester's change proposal to a published
// reservation. Only one unresolved proposal may exist at a time; the
// record's own fields are untouched until a reviewer approves.
func RequestEdit(ctx context.Context, actor *models.Account, eventID string, rawChanges map[string]any, reason string, version int64) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionRequestEdit); err != nil {
		return nil, err
	}
	if r.Status != models.StatusPublished {
		return nil, errmsg.ReservationNotPublished
	}
	if r.PendingEditRequest != nil {
		return nil, errmsg.EditRequestAlreadyPresent
	}

	patch, err := ParsePatch(rawChanges)
	if err != nil {
		return nil, errmsg.ReservationInvalidRequest
	}
	if len(patch) == 0 {
		return nil, errmsg.ReservationInvalidRequest
	}
	if err := validatePatch(r, patch); err != nil {
		return nil, err
	}

	// The proposal is stored in its wire form; it is parsed again when a
	// reviewer approves, against whatever the record looks like then.
	requested := map[string]any{}
	for field := range patch {
		requested[field] = rawChanges[field]
	}

	editRequest := models.PendingEditRequest{
		RequestedAt:      time.Now().UTC(),
		RequestedBy:      actor.ID,
		RequestedChanges: requested,
		Reason:           reason,
	}

	expectedStatus := models.StatusPublished
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set: bson.M{"pendingEditRequest": editRequest},
		Guard: models.UpdateGuard{
			ExpectedVersion: &version,
			ExpectedStatus:  &expectedStatus,
			ModifiedBy:      actor.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	events.Em.EditRequested(actor, updated, requested, reason)
	notify.Dispatch("reservation.edit_requested", updated, nil)

	return &Result{Reservation: updated}, nil
}

// ApproveEditRequest applies the requester's proposed changes and clears
// the proposal. Fields pruned by earlier reviewer edits are simply gone:
// an emptied proposal approves as a no-op field-wise. The conflict check
// runs unconditionally when the applied changes touch rooms or times.
func ApproveEditRequest(ctx context.Context, actor *models.Account, eventID string, version int64) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionResolveEditRequest); err != nil {
		return nil, err
	}
	if r.PendingEditRequest == nil {
		return nil, errmsg.EditRequestNotFound
	}

	patch, err := ParsePatch(r.PendingEditRequest.RequestedChanges)
	if err != nil {
		return nil, errmsg.ReservationInvalidRequest
	}

	if err := validatePatch(r, patch); err != nil {
		return nil, err
	}
	if err := checkConflicts(ctx, r, patch, false); err != nil {
		return nil, err
	}

	changes := DetectChanges(r, patch)

	expectedStatus := r.Status
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set:   BuildSet(patch),
		Unset: bson.M{"pendingEditRequest": ""},
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
	result.CalendarSynced = syncUpdate(ctx, updated, patch)

	events.Em.EditRequestApproved(actor, r, updated, changes)
	notify.Dispatch("reservation.edit_request_approved", updated, changes)

	return result, nil
}

// RejectEditRequest discards the requester's proposal with a mandatory
// reason. No reservation field changes.
func RejectEditRequest(ctx context.Context, actor *models.Account, eventID, reason string, version int64) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionResolveEditRequest); err != nil {
		return nil, err
	}
	if r.PendingEditRequest == nil {
		return nil, errmsg.EditRequestNotFound
	}
	if reason == "" {
		return nil, errmsg.RejectionReasonRequired
	}

	expectedStatus := r.Status
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set:   bson.M{},
		Unset: bson.M{"pendingEditRequest": ""},
		Guard: models.UpdateGuard{
			ExpectedVersion: &version,
			ExpectedStatus:  &expectedStatus,
			ModifiedBy:      actor.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	events.Em.EditRequestRejected(actor, updated, reason)
	notify.Dispatch("reservation.edit_request_rejected", updated, nil)

	return &Result{Reservation: updated}, nil
}
