package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"roomdesk/internal/models"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

// DraftSpec describes the draft created by API_CreateDraft. Zero values
// fall back to a complete, submittable draft.
type DraftSpec struct {
	Title string
	Start time.Time
	End   time.Time
	Rooms []string
}

func API_CreateDraft(t *testing.T, app *fiber.App, token string, spec DraftSpec) models.Reservation {
	if spec.Title == "" {
		spec.Title = "Team sync"
	}
	if spec.Start.IsZero() {
		spec.Start = time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)
	}
	if spec.End.IsZero() {
		spec.End = spec.Start.Add(2 * time.Hour)
	}
	if spec.Rooms == nil {
		spec.Rooms = []string{"room-a"}
	}

	payload := map[string]any{
		"title":           spec.Title,
		"description":     "created by test",
		"startDateTime":   spec.Start.Format(time.RFC3339),
		"endDateTime":     spec.End.Format(time.RFC3339),
		"rooms":           spec.Rooms,
		"roomNames":       spec.Rooms,
		"categories":      []string{"meeting"},
		"attendeeCount":   8,
		"setupMinutes":    15,
		"doorOpenMinutes": 10,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	body, statusCode := RequestRunner(t, app,
		http.MethodPost, "/roomdesk/reservations", raw, &token)
	require.Equal(t, http.StatusCreated, statusCode)

	return decodeReservation(t, body)
}

func API_Submit(t *testing.T, app *fiber.App, token, eventID string, version int64) ([]byte, int) {
	return RequestRunner(t, app,
		http.MethodPost,
		fmt.Sprintf("/roomdesk/reservations/%s/submit", eventID),
		[]byte(fmt.Sprintf(`{"_version":%d}`, version)),
		&token,
	)
}

func API_Publish(t *testing.T, app *fiber.App, token, eventID string, version int64, force bool) ([]byte, int) {
	return RequestRunner(t, app,
		http.MethodPost,
		fmt.Sprintf("/roomdesk/reservations/%s/publish", eventID),
		[]byte(fmt.Sprintf(`{"_version":%d,"force":%t}`, version, force)),
		&token,
	)
}

func API_Reject(t *testing.T, app *fiber.App, token, eventID, reason string, version int64) ([]byte, int) {
	return RequestRunner(t, app,
		http.MethodPost,
		fmt.Sprintf("/roomdesk/reservations/%s/reject", eventID),
		[]byte(fmt.Sprintf(`{"_version":%d,"reason":%q}`, version, reason)),
		&token,
	)
}

func API_Resubmit(t *testing.T, app *fiber.App, token, eventID string, version int64) ([]byte, int) {
	return RequestRunner(t, app,
		http.MethodPost,
		fmt.Sprintf("/roomdesk/reservations/%s/resubmit", eventID),
		[]byte(fmt.Sprintf(`{"_version":%d}`, version)),
		&token,
	)
}

func API_Edit(t *testing.T, app *fiber.App, token, eventID string, version int64, changes map[string]any) ([]byte, int) {
	raw, err := json.Marshal(map[string]any{
		"_version": version,
		"changes":  changes,
	})
	require.NoError(t, err)

	return RequestRunner(t, app,
		http.MethodPatch,
		fmt.Sprintf("/roomdesk/reservations/%s", eventID),
		raw,
		&token,
	)
}

func API_RequestEdit(t *testing.T, app *fiber.App, token, eventID string, version int64, changes map[string]any, reason string) ([]byte, int) {
	raw, err := json.Marshal(map[string]any{
		"_version": version,
		"changes":  changes,
		"reason":   reason,
	})
	require.NoError(t, err)

	return RequestRunner(t, app,
		http.MethodPost,
		fmt.Sprintf("/roomdesk/reservations/%s/edit-request", eventID),
		raw,
		&token,
	)
}

func API_ResolveEditRequest(t *testing.T, app *fiber.App, token, eventID, verdict string, version int64, reason string) ([]byte, int) {
	return RequestRunner(t, app,
		http.MethodPost,
		fmt.Sprintf("/roomdesk/reservations/%s/edit-request/%s", eventID, verdict),
		[]byte(fmt.Sprintf(`{"_version":%d,"reason":%q}`, version, reason)),
		&token,
	)
}

func API_Remove(t *testing.T, app *fiber.App, token, eventID, reason string, version int64) ([]byte, int) {
	return RequestRunner(t, app,
		http.MethodDelete,
		fmt.Sprintf("/roomdesk/reservations/%s", eventID),
		[]byte(fmt.Sprintf(`{"_version":%d,"reason":%q}`, version, reason)),
		&token,
	)
}

func API_Restore(t *testing.T, app *fiber.App, token, eventID string, version int64, force bool) ([]byte, int) {
	return RequestRunner(t, app,
		http.MethodPost,
		fmt.Sprintf("/roomdesk/reservations/%s/restore", eventID),
		[]byte(fmt.Sprintf(`{"_version":%d,"force":%t}`, version, force)),
		&token,
	)
}

func API_Get(t *testing.T, app *fiber.App, token, eventID string) models.Reservation {
	body, statusCode := RequestRunner(t, app,
		http.MethodGet,
		fmt.Sprintf("/roomdesk/reservations/%s", eventID),
		nil,
		&token,
	)
	require.Equal(t, http.StatusOK, statusCode)

	return decodeReservation(t, body)
}

// DecodeReservation unwraps the `reservation` envelope every handler
// responds with.
func DecodeReservation(t *testing.T, body []byte) models.Reservation {
	return decodeReservation(t, body)
}

func decodeReservation(t *testing.T, body []byte) models.Reservation {
	var payload struct {
		Reservation models.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NotEmpty(t, payload.Reservation.EventID)

	return payload.Reservation
}
