package models

import (
	"context"
	"time"

	"roomdesk/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditEntry is the immutable record of one completed lifecycle
// transition. Entries are only ever inserted; nothing updates or deletes
// them, and current state is never derived from them.
type AuditEntry struct {
	TimeStamp time.Time `bson:"timestamp" json:"timestamp"`

	EventID string `bson:"eventId" json:"eventId"`
	Action  string `bson:"action" json:"action"`

	PerformedBy      string `bson:"performedBy" json:"performedBy"`
	PerformedByEmail string `bson:"performedByEmail" json:"performedByEmail"`

	PreviousState *Reservation `bson:"previousState,omitempty" json:"previousState,omitempty"`
	NewState      *Reservation `bson:"newState,omitempty" json:"newState,omitempty"`

	Changes       []Change `bson:"changes,omitempty" json:"changes,omitempty"`
	ReviewChanges []Change `bson:"reviewChanges,omitempty" json:"reviewChanges,omitempty"`

	Metadata map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// ListAuditEntries returns the audit trail for one reservation, oldest
// first.
func ListAuditEntries(ctx context.Context, eventID string) ([]AuditEntry, error) {
	cursor, err := db.AuditLog.Find(ctx, bson.M{"eventId": eventID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
