package core

import (
	"context"
	"time"

	"roomdesk/internal/db"
	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Overlaps reports whether the half-open intervals [startA, endA) and
// [startB, endB) intersect. Touching endpoints do not conflict.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && endA.After(startB)
}

func roomsIntersect(a, b []string) bool {
	for _, room := range a {
		for _, other := range b {
			if room == other {
				return true
			}
		}
	}
	return false
}

// FindConflicts returns a summary of every published reservation whose
// room set and time window overlap the candidate's. Only published
// records occupy rooms; pending, rejected, cancelled, deleted and draft
// records never block. A candidate without rooms never conflicts.
func FindConflicts(ctx context.Context, rooms []string, start, end time.Time, excludeEventID string) ([]errmsg.ConflictSummary, error) {
	if len(rooms) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"status":        models.StatusPublished,
		"eventId":       bson.M{"$ne": excludeEventID},
		"rooms":         bson.M{"$in": rooms},
		"startDateTime": bson.M{"$lt": end},
		"endDateTime":   bson.M{"$gt": start},
	}

	cursor, err := db.Reservations.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var occupants []models.Reservation
	if err := cursor.All(ctx, &occupants); err != nil {
		return nil, err
	}

	var conflicts []errmsg.ConflictSummary
	for _, occupant := range occupants {
		if !roomsIntersect(rooms, occupant.Rooms) {
			continue
		}
		if !Overlaps(start, end, occupant.StartDateTime, occupant.EndDateTime) {
			continue
		}

		conflicts = append(conflicts, errmsg.ConflictSummary{
			ID:            occupant.EventID,
			EventTitle:    occupant.Title,
			StartDateTime: occupant.StartDateTime,
			EndDateTime:   occupant.EndDateTime,
			Rooms:         occupant.Rooms,
			Status:        string(occupant.Status),
		})
	}

	return conflicts, nil
}

// checkConflicts runs the detector for a reservation about to occupy
// rooms, honoring the force override only when permitted for the
// transition at hand. The read is advisory: it is not atomic with the
// subsequent conditional update.
func checkConflicts(ctx context.Context, r *models.Reservation, patch Patch, force bool) error {
	rooms := r.Rooms
	start := r.StartDateTime
	end := r.EndDateTime

	if patch != nil {
		if v, ok := patch["rooms"]; ok {
			rooms = v.([]string)
		}
		if v, ok := patch["startDateTime"]; ok {
			start = v.(time.Time)
		}
		if v, ok := patch["endDateTime"]; ok {
			end = v.(time.Time)
		}
	}

	if force || len(rooms) == 0 {
		return nil
	}

	conflicts, err := FindConflicts(ctx, rooms, start, end, r.EventID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return errmsg.SchedulingConflict(conflicts, r.Version)
	}

	return nil
}
