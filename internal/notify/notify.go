package notify

import (
	"encoding/json"
	"log"
	"time"

	"roomdesk/internal/db"
	"roomdesk/internal/models"
)

// Enabled is wired at boot once the Redis connection is up. Delivery
// itself happens outside this service; the outbox list is the boundary.
var Enabled bool

const optOutCachePrefix = "notify-opt:"

// OptOutCacheKey names the cached opt-out list for one recipient.
// Whoever changes the stored preferences must delete this key.
func OptOutCacheKey(email string) string {
	return optOutCachePrefix + email
}

// Payload is the structured change notification handed to the delivery
// worker for one recipient.
type Payload struct {
	Action     string          `json:"action"`
	EventID    string          `json:"eventId"`
	Title      string          `json:"title"`
	Status     models.Status   `json:"status"`
	Recipient  string          `json:"recipient"`
	Changes    []models.Change `json:"changes,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type activityRecord struct {
	Action     string        `json:"action"`
	EventID    string        `json:"eventId"`
	Title      string        `json:"title"`
	Status     models.Status `json:"status"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// Dispatch queues a notification for the reservation's requester and
// broadcasts a compact record on the live activity channel. Failures are
// logged and swallowed: notifications never block a transition.
func Dispatch(action string, r *models.Reservation, changes []models.Change) {
	if !Enabled || r == nil {
		return
	}

	now := time.Now().UTC()

	recipient := r.RoomReservationData.RequesterEmail
	if recipient != "" && !optedOut(recipient, action) {
		payload, err := json.Marshal(Payload{
			Action:     action,
			EventID:    r.EventID,
			Title:      r.Title,
			Status:     r.Status,
			Recipient:  recipient,
			Changes:    changes,
			OccurredAt: now,
		})
		if err == nil {
			if err := db.QueuePush(db.NotificationQueue, payload); err != nil {
				log.Printf("notification enqueue failed for %s: %v", r.EventID, err)
			}
		}
	}

	record, err := json.Marshal(activityRecord{
		Action:     action,
		EventID:    r.EventID,
		Title:      r.Title,
		Status:     r.Status,
		OccurredAt: now,
	})
	if err == nil {
		if err := db.PublishActivity(record); err != nil {
			log.Printf("activity publish failed for %s: %v", r.EventID, err)
		}
	}
}

// optedOut checks the recipient's opt-out list, reading through the
// cache so every transition does not cost an account lookup.
func optedOut(email, action string) bool {
	skipped, cached := cachedOptOut(email)
	if !cached {
		account, ok := models.GetAccountByEmail(email)
		if !ok {
			return false
		}

		skipped = account.NotifyOptOut
		if payload, err := json.Marshal(skipped); err == nil {
			if err := db.CacheSet(OptOutCacheKey(email), string(payload)); err != nil {
				log.Printf("opt-out cache write failed for %s: %v", email, err)
			}
		}
	}

	for _, entry := range skipped {
		if entry == action {
			return true
		}
	}
	return false
}

func cachedOptOut(email string) ([]string, bool) {
	raw, err := db.CacheGet(OptOutCacheKey(email))
	if err != nil {
		return nil, false
	}

	var skipped []string
	if err := json.Unmarshal([]byte(raw), &skipped); err != nil {
		return nil, false
	}
	return skipped, true
}
