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

// Result is the outcome of one committed lifecycle transition.
type Result struct {
	Reservation    *models.Reservation
	ReviewChanges  []models.Change
	CalendarSynced bool
}

// DraftInput is the caller-supplied content of a new reservation draft.
type DraftInput struct {
	Title           string
	Description     string
	StartDateTime   time.Time
	EndDateTime     time.Time
	Rooms           []string
	RoomNames       []string
	Categories      []string
	AttendeeCount   int
	SetupMinutes    int
	DoorOpenMinutes int
	TeardownMinutes int
	Phone           string
}

func historyEntry(actor *models.Account, status models.Status, reason string) models.StatusHistoryEntry {
	return models.StatusHistoryEntry{
		Status:         status,
		ChangedAt:      time.Now().UTC(),
		ChangedBy:      actor.ID,
		ChangedByEmail: actor.Email,
		Reason:         reason,
	}
}

// CreateDraft inserts a new reservation owned by the acting account.
func CreateDraft(ctx context.Context, actor *models.Account, input DraftInput) (*models.Reservation, error) {
	resubmissionAllowed := true

	reservation := models.Reservation{
		Title:           input.Title,
		Description:     input.Description,
		StartDateTime:   input.StartDateTime.UTC(),
		EndDateTime:     input.EndDateTime.UTC(),
		Rooms:           input.Rooms,
		RoomNames:       input.RoomNames,
		Categories:      input.Categories,
		AttendeeCount:   input.AttendeeCount,
		SetupMinutes:    input.SetupMinutes,
		DoorOpenMinutes: input.DoorOpenMinutes,
		TeardownMinutes: input.TeardownMinutes,
		RoomReservationData: models.RoomReservationData{
			RequesterID:         actor.ID,
			RequesterName:       actor.Name,
			RequesterEmail:      actor.Email,
			Department:          actor.Department,
			Phone:               input.Phone,
			ResubmissionAllowed: &resubmissionAllowed,
		},
	}

	created, err := models.CreateReservation(ctx, reservation)
	if err != nil {
		return nil, err
	}

	events.Em.ReservationCreated(actor, created)

	return created, nil
}

// SubmitDraft moves a complete draft into the pending queue. A reviewer
// submitting skips the queue and publishes immediately; the force flag is
// honored only on that reviewer fast path.
func SubmitDraft(ctx context.Context, actor *models.Account, eventID string, version int64, force bool) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionSubmit); err != nil {
		return nil, err
	}
	if r.Status != models.StatusDraft {
		return nil, errmsg.ReservationNotDraft
	}
	if err := ValidateForSubmit(r); err != nil {
		return nil, err
	}

	target := models.StatusPending
	if actor.IsReviewer() {
		target = models.StatusPublished

		if !mayForceConflicts(actor, ActionSubmit) {
			force = false
		}
		if err := checkConflicts(ctx, r, nil, force); err != nil {
			return nil, err
		}
	}

	set := bson.M{"status": target}
	if target == models.StatusPublished {
		now := time.Now().UTC()
		set["reviewedAt"] = now
		set["reviewedBy"] = actor.ID
	}

	expectedStatus := models.StatusDraft
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set:  set,
		Push: models.HistoryEntryPush(historyEntry(actor, target, "")),
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
	if target == models.StatusPublished {
		result.Reservation, result.CalendarSynced = syncCreate(ctx, updated)
	}

	events.Em.ReservationSubmitted(actor, r, result.Reservation)
	notify.Dispatch("reservation.submitted", result.Reservation, nil)

	return result, nil
}

// EditReservation applies a field patch to a pending, rejected or
// published reservation. Editing a rejected record resubmits it; editing
// while pending as a reviewer tracks review changes; editing a published
// record prunes any overlapping requester edit proposal. The conflict
// check always runs when rooms are involved; no force override exists
// here.
func EditReservation(ctx context.Context, actor *models.Account, eventID string, patch Patch, version int64) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionEdit); err != nil {
		return nil, err
	}

	switch r.Status {
	case models.StatusPending, models.StatusPublished:
	case models.StatusRejected:
		if allowed := r.RoomReservationData.ResubmissionAllowed; allowed != nil && !*allowed {
			return nil, errmsg.ResubmissionNotAllowed
		}
	default:
		return nil, errmsg.ReservationNotEditable
	}

	if err := validatePatch(r, patch); err != nil {
		return nil, err
	}
	if err := checkConflicts(ctx, r, patch, false); err != nil {
		return nil, err
	}

	changes := DetectChanges(r, patch)
	set := BuildSet(patch)
	unset := bson.M{}
	var push bson.M

	action := "reservation.updated"

	if r.Status == models.StatusPending && actor.IsReviewer() && !owns(actor, r) {
		set["roomReservationData.reviewChanges"] = MergeReviewChanges(
			r.RoomReservationData.ReviewChanges, changes)
		action = "reservation.review_updated"
	}

	if r.Status == models.StatusRejected {
		set["status"] = models.StatusPending
		unset["reviewedAt"] = ""
		unset["reviewedBy"] = ""
		push = models.HistoryEntryPush(historyEntry(actor, models.StatusPending, "resubmitted with edits"))
		action = "reservation.resubmitted"
	}

	if r.Status == models.StatusPublished && r.PendingEditRequest != nil {
		set["pendingEditRequest.requestedChanges"] = PruneAppliedChanges(
			r.PendingEditRequest.RequestedChanges, patch)
	}

	expectedStatus := r.Status
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set:   set,
		Unset: unset,
		Push:  push,
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
	if r.Status == models.StatusPublished {
		result.CalendarSynced = syncUpdate(ctx, updated, patch)
	}

	events.Em.ReservationEdited(actor, action, r, updated, changes)
	notify.Dispatch(action, updated, changes)

	return result, nil
}

// RejectPending returns a pending reservation to its requester with a
// mandatory reason. allowResubmission gates whether the requester may try
// again.
func RejectPending(ctx context.Context, actor *models.Account, eventID, reason string, allowResubmission bool, version int64) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionReject); err != nil {
		return nil, err
	}
	if r.Status != models.StatusPending {
		return nil, errmsg.ReservationNotPending
	}
	if reason == "" {
		return nil, errmsg.RejectionReasonRequired
	}

	now := time.Now().UTC()
	expectedStatus := models.StatusPending
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set: bson.M{
			"status":     models.StatusRejected,
			"reviewedAt": now,
			"reviewedBy": actor.ID,
			"roomReservationData.resubmissionAllowed": allowResubmission,
		},
		Push: models.HistoryEntryPush(historyEntry(actor, models.StatusRejected, reason)),
		Guard: models.UpdateGuard{
			ExpectedVersion: &version,
			ExpectedStatus:  &expectedStatus,
			ModifiedBy:      actor.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	events.Em.ReservationRejected(actor, r, updated, reason)
	notify.Dispatch("reservation.rejected", updated, nil)

	return &Result{Reservation: updated}, nil
}

// Resubmit returns a rejected reservation to the pending queue without
// edits. The review marks are cleared so it reads as a fresh submission.
func Resubmit(ctx context.Context, actor *models.Account, eventID string, version int64) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionResubmit); err != nil {
		return nil, err
	}
	if r.Status != models.StatusRejected {
		return nil, errmsg.ReservationNotRejected
	}
	if allowed := r.RoomReservationData.ResubmissionAllowed; allowed != nil && !*allowed {
		return nil, errmsg.ResubmissionNotAllowed
	}

	expectedStatus := models.StatusRejected
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set: bson.M{"status": models.StatusPending},
		Unset: bson.M{
			"reviewedAt": "",
			"reviewedBy": "",
		},
		Push: models.HistoryEntryPush(historyEntry(actor, models.StatusPending, "resubmitted")),
		Guard: models.UpdateGuard{
			ExpectedVersion: &version,
			ExpectedStatus:  &expectedStatus,
			ModifiedBy:      actor.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	events.Em.ReservationResubmitted(actor, r, updated)
	notify.Dispatch("reservation.resubmitted", updated, nil)

	return &Result{Reservation: updated}, nil
}

// Remove soft-deletes a reservation. A reviewer removing any record marks
// it deleted; an owner withdrawing their own records it as cancelled so
// the two removals stay distinguishable. Nothing is ever physically
// deleted.
func Remove(ctx context.Context, actor *models.Account, eventID, reason string, version int64) (*Result, error) {
	r, err := models.GetReservationByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, r, ActionRemove); err != nil {
		return nil, err
	}
	if r.Status == models.StatusDeleted || r.Status == models.StatusCancelled {
		return nil, errmsg.ReservationAlreadyDeleted
	}

	target := models.StatusCancelled
	set := bson.M{"status": target}

	if actor.IsReviewer() {
		target = models.StatusDeleted
		now := time.Now().UTC()
		set = bson.M{
			"status":    target,
			"isDeleted": true,
			"deletedAt": now,
			"deletedBy": actor.ID,
		}
	}

	expectedStatus := r.Status
	updated, err := models.UpdateReservation(ctx, eventID, models.UpdateSpec{
		Set:  set,
		Push: models.HistoryEntryPush(historyEntry(actor, target, reason)),
		Guard: models.UpdateGuard{
			ExpectedVersion: &version,
			ExpectedStatus:  &expectedStatus,
			ModifiedBy:      actor.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	events.Em.ReservationRemoved(actor, r, updated, reason)
	notify.Dispatch("reservation.removed", updated, nil)

	return &Result{Reservation: updated}, nil
}
