package models

import (
	"context"
	"errors"
	"time"

	"roomdesk/internal/db"
	"roomdesk/internal/errmsg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpdateGuard carries the optimistic-concurrency expectations for a
// conditional reservation update. A nil ExpectedVersion skips the version
// check entirely; a nil ExpectedStatus skips the status check.
type UpdateGuard struct {
	ExpectedVersion *int64
	ExpectedStatus  *Status
	ModifiedBy      string
}

// UpdateSpec is the full mutation applied by UpdateReservation. Set, Unset
// and Push map directly onto the store's update operators.
type UpdateSpec struct {
	Set   bson.M
	Unset bson.M
	Push  bson.M
	Guard UpdateGuard
}

// UpdateReservation applies spec atomically: the stored record must match
// every guard expectation for the mutation to apply, and on success the
// version increments by exactly 1. When any guard fails the stored record
// is left untouched and a VersionConflictError carrying the current
// version and status is returned.
func UpdateReservation(ctx context.Context, eventID string, spec UpdateSpec) (*Reservation, error) {
	filter := bson.M{"eventId": eventID}
	if spec.Guard.ExpectedVersion != nil {
		filter["version"] = *spec.Guard.ExpectedVersion
	}
	if spec.Guard.ExpectedStatus != nil {
		filter["status"] = *spec.Guard.ExpectedStatus
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for field, value := range spec.Set {
		set[field] = value
	}

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if len(spec.Unset) > 0 {
		update["$unset"] = spec.Unset
	}
	if len(spec.Push) > 0 {
		update["$push"] = spec.Push
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Reservation
	err := db.Reservations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// The guarded filter missed: distinguish a missing record from a
	// version/status mismatch by re-reading the current state.
	current, gerr := GetReservationByEventID(ctx, eventID)
	if gerr != nil {
		return nil, gerr
	}

	return nil, errmsg.VersionConflict(current.Version, string(current.Status))
}

// HistoryEntryPush builds the $push fragment appending one status-history
// entry.
func HistoryEntryPush(entry StatusHistoryEntry) bson.M {
	return bson.M{"statusHistory": entry}
}
