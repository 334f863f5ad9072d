package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"roomdesk/internal/core"
	"roomdesk/internal/models"
	"roomdesk/test/helpers"

	"github.com/stretchr/testify/require"
)

// scriptedCalendar stands in for the external calendar and counts what
// the sync gate asked of it.
type scriptedCalendar struct {
	mu      sync.Mutex
	creates int
	updates int
	fail    bool
}

func (c *scriptedCalendar) CreateEvent(_ context.Context, subject, description string, start, end time.Time) (*models.GraphData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.creates++
	if c.fail {
		return nil, errors.New("calendar unavailable")
	}
	return &models.GraphData{
		ID:        fmt.Sprintf("ext-%d", c.creates),
		ICalUID:   fmt.Sprintf("ical-%d", c.creates),
		WebLink:   "https://calendar.example/" + subject,
		ChangeKey: "ck-1",
	}, nil
}

func (c *scriptedCalendar) UpdateEvent(_ context.Context, externalID, subject, description string, start, end time.Time) (*models.GraphData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updates++
	if c.fail {
		return nil, errors.New("calendar unavailable")
	}
	return &models.GraphData{ID: externalID, ChangeKey: "ck-2"}, nil
}

func (c *scriptedCalendar) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates, c.updates
}

func withScriptedCalendar(t *testing.T) *scriptedCalendar {
	cal := &scriptedCalendar{}
	previous := core.Cal
	core.Cal = cal
	t.Cleanup(func() { core.Cal = previous })
	return cal
}

type syncedResponse struct {
	Reservation    models.Reservation `json:"reservation"`
	CalendarSynced bool               `json:"calendarSynced"`
}

func decodeSynced(t *testing.T, body []byte) syncedResponse {
	var payload syncedResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestApproverSubmitCreatesCalendarEventExactlyOnce(t *testing.T) {
	cal := withScriptedCalendar(t)

	helpers.EnsureAccount(t, "appr-cal@test.local", models.RoleApprover, "operations")
	approver := helpers.Login(t, app, "appr-cal@test.local")

	draft := helpers.API_CreateDraft(t, app, approver, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("cal-submit")},
	})

	body, statusCode := helpers.API_Submit(t, app, approver, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	payload := decodeSynced(t, body)
	require.Equal(t, models.StatusPublished, payload.Reservation.Status)
	require.True(t, payload.CalendarSynced)
	require.NotNil(t, payload.Reservation.GraphData)
	require.Equal(t, "ext-1", payload.Reservation.GraphData.ID)

	creates, updates := cal.counts()
	require.Equal(t, 1, creates)
	require.Zero(t, updates)
}

func TestRequesterSubmitNeverTouchesCalendar(t *testing.T) {
	cal := withScriptedCalendar(t)

	helpers.EnsureAccount(t, "req-cal@test.local", models.RoleRequester, "facilities")
	requester := helpers.Login(t, app, "req-cal@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("cal-pending")},
	})
	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	creates, updates := cal.counts()
	require.Zero(t, creates)
	require.Zero(t, updates)
}

func TestCalendarLinkageFollowsTheLifecycle(t *testing.T) {
	cal := withScriptedCalendar(t)

	helpers.EnsureAccount(t, "req-call@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-call@test.local", models.RoleApprover, "operations")
	helpers.EnsureAccount(t, "admin-call@test.local", models.RoleAdmin, "operations")
	requester := helpers.Login(t, app, "req-call@test.local")
	approver := helpers.Login(t, app, "appr-call@test.local")
	admin := helpers.Login(t, app, "admin-call@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("cal-life")},
	})
	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	// publishing an unlinked record creates the external event
	body, statusCode := helpers.API_Publish(t, app, approver, draft.EventID, 2, false)
	require.Equal(t, http.StatusOK, statusCode)

	published := decodeSynced(t, body)
	require.True(t, published.CalendarSynced)
	require.Equal(t, "ext-1", published.Reservation.GraphData.ID)

	creates, updates := cal.counts()
	require.Equal(t, 1, creates)
	require.Zero(t, updates)

	// an in-place edit of the linked record updates, never recreates
	body, statusCode = helpers.API_Edit(t, app, approver, draft.EventID,
		published.Reservation.Version, map[string]any{"title": "Moved downstairs"})
	require.Equal(t, http.StatusOK, statusCode)

	edited := decodeSynced(t, body)
	require.True(t, edited.CalendarSynced)

	creates, updates = cal.counts()
	require.Equal(t, 1, creates)
	require.Equal(t, 1, updates)

	// removal makes no calendar call
	body, statusCode = helpers.API_Remove(t, app, approver, draft.EventID,
		"room flooded", edited.Reservation.Version)
	require.Equal(t, http.StatusOK, statusCode)
	deleted := helpers.DecodeReservation(t, body)

	creates, updates = cal.counts()
	require.Equal(t, 1, creates)
	require.Equal(t, 1, updates)

	// restoring a linked record mirrors it outward as a fresh event
	body, statusCode = helpers.API_Restore(t, app, admin, draft.EventID, deleted.Version, false)
	require.Equal(t, http.StatusOK, statusCode)

	restored := decodeSynced(t, body)
	require.Equal(t, models.StatusPublished, restored.Reservation.Status)
	require.True(t, restored.CalendarSynced)
	require.Equal(t, "ext-2", restored.Reservation.GraphData.ID)

	creates, updates = cal.counts()
	require.Equal(t, 2, creates)
	require.Equal(t, 1, updates)
}

func TestApprovedEditRequestSyncsOutward(t *testing.T) {
	cal := withScriptedCalendar(t)

	helpers.EnsureAccount(t, "req-caler@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-caler@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-caler@test.local")
	approver := helpers.Login(t, app, "appr-caler@test.local")

	published := publishForRequester(t, requester, approver, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("cal-er")},
	})
	require.NotNil(t, published.GraphData)

	body, statusCode := helpers.API_RequestEdit(t, app, requester, published.EventID,
		published.Version, map[string]any{"title": "New name"}, "")
	require.Equal(t, http.StatusOK, statusCode)
	withRequest := helpers.DecodeReservation(t, body)

	body, statusCode = helpers.API_ResolveEditRequest(t, app, approver, published.EventID,
		"approve", withRequest.Version, "")
	require.Equal(t, http.StatusOK, statusCode)
	require.True(t, decodeSynced(t, body).CalendarSynced)

	creates, updates := cal.counts()
	require.Equal(t, 1, creates)
	require.Equal(t, 1, updates)
}

func TestCalendarFailureNeverRollsBackPublish(t *testing.T) {
	cal := withScriptedCalendar(t)
	cal.fail = true

	helpers.EnsureAccount(t, "appr-calfail@test.local", models.RoleApprover, "operations")
	approver := helpers.Login(t, app, "appr-calfail@test.local")

	draft := helpers.API_CreateDraft(t, app, approver, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("cal-fail")},
	})

	body, statusCode := helpers.API_Submit(t, app, approver, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	payload := decodeSynced(t, body)
	require.Equal(t, models.StatusPublished, payload.Reservation.Status)
	require.False(t, payload.CalendarSynced)
	require.Nil(t, payload.Reservation.GraphData)

	creates, _ := cal.counts()
	require.Equal(t, 1, creates)

	// the record is committed and readable despite the failed mirror
	current := helpers.API_Get(t, app, approver, draft.EventID)
	require.Equal(t, models.StatusPublished, current.Status)
}
