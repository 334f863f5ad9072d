package core

import (
	"context"
	"log"
	"time"

	"roomdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Calendar mirrors reservations to an externally hosted calendar. The
// concrete client lives in internal/graph; tests substitute fakes.
type Calendar interface {
	CreateEvent(ctx context.Context, subject, description string, start, end time.Time) (*models.GraphData, error)
	UpdateEvent(ctx context.Context, externalID, subject, description string, start, end time.Time) (*models.GraphData, error)
}

// Cal is wired at boot when an external calendar is configured. A nil Cal
// disables outward sync entirely.
var Cal Calendar

var syncableFields = map[string]bool{
	"title":         true,
	"description":   true,
	"startDateTime": true,
	"endDateTime":   true,
	"rooms":         true,
	"categories":    true,
}

func touchesSyncable(patch Patch) bool {
	for field := range patch {
		if syncableFields[field] {
			return true
		}
	}
	return false
}

// syncCreate mirrors a reservation outward for the first time (or again
// after restore) and stores the returned linkage. Failure is terminal for
// this transition but never rolls it back: the committed record is
// returned unchanged with a false sync flag.
func syncCreate(ctx context.Context, r *models.Reservation) (*models.Reservation, bool) {
	if Cal == nil {
		return r, false
	}

	graphData, err := Cal.CreateEvent(ctx, r.Title, r.Description, r.StartDateTime, r.EndDateTime)
	if err != nil {
		log.Printf("calendar create failed for %s: %v", r.EventID, err)
		return r, false
	}

	// Linkage is stored without optimistic guards: the transition is
	// already committed and losing the linkage write would orphan the
	// external event.
	updated, uerr := models.UpdateReservation(ctx, r.EventID, models.UpdateSpec{
		Set: bson.M{"graphData": graphData},
	})
	if uerr != nil {
		log.Printf("storing calendar linkage failed for %s: %v", r.EventID, uerr)
		return r, true
	}

	return updated, true
}

// syncUpdate pushes syncable field changes to the already-linked external
// event. Records without linkage, and patches touching nothing syncable,
// skip the call.
func syncUpdate(ctx context.Context, r *models.Reservation, patch Patch) bool {
	if Cal == nil || r.GraphData == nil || !touchesSyncable(patch) {
		return false
	}

	_, err := Cal.UpdateEvent(ctx, r.GraphData.ID, r.Title, r.Description, r.StartDateTime, r.EndDateTime)
	if err != nil {
		log.Printf("calendar update failed for %s: %v", r.EventID, err)
		return false
	}

	return true
}
