package models

import (
	"context"
	"errors"
	"time"

	"roomdesk/internal/db"
	"roomdesk/internal/errmsg"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
	StatusDeleted   Status = "deleted"
	StatusCancelled Status = "cancelled"
)

// LocalTimeLayout is the legacy local-time representation carried alongside
// the canonical timestamps. It intentionally has no timezone suffix.
const LocalTimeLayout = "2006-01-02T15:04:05"

// Change is one human-readable field difference between a stored
// reservation and an incoming mutation.
type Change struct {
	Field       string `bson:"field" json:"field"`
	DisplayName string `bson:"displayName" json:"displayName"`
	OldValue    any    `bson:"oldValue" json:"oldValue"`
	NewValue    any    `bson:"newValue" json:"newValue"`
}

// RoomReservationData carries the requester identity and the review-phase
// bookkeeping attached to a reservation.
type RoomReservationData struct {
	RequesterID         string   `bson:"requesterId" json:"requesterId"`
	RequesterName       string   `bson:"requesterName" json:"requesterName"`
	RequesterEmail      string   `bson:"requesterEmail" json:"requesterEmail"`
	Department          string   `bson:"department" json:"department"`
	Phone               string   `bson:"phone,omitempty" json:"phone,omitempty"`
	ResubmissionAllowed *bool    `bson:"resubmissionAllowed,omitempty" json:"resubmissionAllowed,omitempty"`
	ReviewChanges       []Change `bson:"reviewChanges,omitempty" json:"reviewChanges,omitempty"`
}

type StatusHistoryEntry struct {
	Status         Status    `bson:"status" json:"status"`
	ChangedAt      time.Time `bson:"changedAt" json:"changedAt"`
	ChangedBy      string    `bson:"changedBy" json:"changedBy"`
	ChangedByEmail string    `bson:"changedByEmail" json:"changedByEmail"`
	Reason         string    `bson:"reason,omitempty" json:"reason,omitempty"`
}

// PendingEditRequest is a requester-proposed change set awaiting approver
// action on an already-published reservation.
type PendingEditRequest struct {
	RequestedAt      time.Time      `bson:"requestedAt" json:"requestedAt"`
	RequestedBy      string         `bson:"requestedBy" json:"requestedBy"`
	RequestedChanges map[string]any `bson:"requestedChanges" json:"requestedChanges"`
	Reason           string         `bson:"reason,omitempty" json:"reason,omitempty"`
}

// GraphData links a reservation to its externally hosted calendar event.
type GraphData struct {
	ID        string `bson:"id" json:"id"`
	ICalUID   string `bson:"iCalUId" json:"iCalUId"`
	WebLink   string `bson:"webLink" json:"webLink"`
	ChangeKey string `bson:"changeKey" json:"changeKey"`
}

// Reservation is the central booking record progressing through the
// lifecycle. Rooms are a set; order carries no meaning.
type Reservation struct {
	MongoID primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EventID string             `bson:"eventId" json:"eventId"`

	Status    Status `bson:"status" json:"status"`
	IsDeleted bool   `bson:"isDeleted" json:"isDeleted"`
	Version   int64  `bson:"version" json:"_version"`

	Title         string    `bson:"title" json:"title"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	StartDateTime time.Time `bson:"startDateTime" json:"startDateTime"`
	EndDateTime   time.Time `bson:"endDateTime" json:"endDateTime"`
	StartLocal    string    `bson:"startLocal,omitempty" json:"startLocal,omitempty"`
	EndLocal      string    `bson:"endLocal,omitempty" json:"endLocal,omitempty"`
	Rooms         []string  `bson:"rooms" json:"rooms"`
	RoomNames     []string  `bson:"roomNames,omitempty" json:"roomNames,omitempty"`
	Categories    []string  `bson:"categories" json:"categories"`
	AttendeeCount int       `bson:"attendeeCount,omitempty" json:"attendeeCount,omitempty"`

	SetupMinutes    int `bson:"setupMinutes" json:"setupMinutes"`
	DoorOpenMinutes int `bson:"doorOpenMinutes" json:"doorOpenMinutes"`
	TeardownMinutes int `bson:"teardownMinutes,omitempty" json:"teardownMinutes,omitempty"`

	RoomReservationData RoomReservationData  `bson:"roomReservationData" json:"roomReservationData"`
	StatusHistory       []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	PendingEditRequest  *PendingEditRequest  `bson:"pendingEditRequest,omitempty" json:"pendingEditRequest,omitempty"`
	GraphData           *GraphData           `bson:"graphData,omitempty" json:"graphData,omitempty"`

	ReviewedAt *time.Time `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ReviewedBy string     `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	DeletedAt  *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy  string     `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewEventID returns a collision-resistant public identifier for a
// reservation, distinct from the store's internal record id.
func NewEventID() string {
	return uuid.NewString()
}

// LocalTimes renders the legacy local-time strings from the canonical
// timestamps. Comparisons must never mix the two representations.
func LocalTimes(start, end time.Time) (string, string) {
	return start.Format(LocalTimeLayout), end.Format(LocalTimeLayout)
}

func CreateReservation(ctx context.Context, r Reservation) (*Reservation, error) {
	now := time.Now().UTC()
	if r.EventID == "" {
		r.EventID = NewEventID()
	}
	r.Status = StatusDraft
	r.IsDeleted = false
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	r.StartLocal, r.EndLocal = LocalTimes(r.StartDateTime, r.EndDateTime)
	r.StatusHistory = []StatusHistoryEntry{{
		Status:         StatusDraft,
		ChangedAt:      now,
		ChangedBy:      r.RoomReservationData.RequesterID,
		ChangedByEmail: r.RoomReservationData.RequesterEmail,
	}}

	if _, err := db.Reservations.InsertOne(ctx, r); err != nil {
		return nil, err
	}
	return &r, nil
}

func GetReservationByEventID(ctx context.Context, eventID string) (*Reservation, error) {
	var r Reservation
	err := db.Reservations.FindOne(ctx, bson.M{"eventId": eventID}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errmsg.ReservationNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListReservations returns reservations matching the optional status
// filter, newest start time first. Soft-deleted records are included only
// when requested.
func ListReservations(ctx context.Context, status Status, includeRemoved bool) ([]Reservation, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	} else if !includeRemoved {
		filter["status"] = bson.M{"$nin": bson.A{StatusDeleted, StatusCancelled}}
	}

	cursor, err := db.Reservations.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "startDateTime", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}

	return reservations, nil
}
