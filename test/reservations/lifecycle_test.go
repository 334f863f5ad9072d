package reservations

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
	"roomdesk/test/helpers"

	"github.com/stretchr/testify/require"
)

func uniqueRoom(label string) string {
	return fmt.Sprintf("room-%s-%d", label, time.Now().UnixNano())
}

func TestRequesterSubmitGoesPending(t *testing.T) {
	helpers.EnsureAccount(t, "req-submit@test.local", models.RoleRequester, "facilities")
	token := helpers.Login(t, app, "req-submit@test.local")

	draft := helpers.API_CreateDraft(t, app, token, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("submit")},
	})
	require.Equal(t, models.StatusDraft, draft.Status)
	require.Equal(t, int64(1), draft.Version)

	body, statusCode := helpers.API_Submit(t, app, token, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	var payload struct {
		Reservation    models.Reservation `json:"reservation"`
		CalendarSynced bool               `json:"calendarSynced"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	require.Equal(t, models.StatusPending, payload.Reservation.Status)
	require.Equal(t, int64(2), payload.Reservation.Version)
	require.False(t, payload.CalendarSynced)
	require.Nil(t, payload.Reservation.GraphData)
}

func TestApproverSubmitPublishesDirectly(t *testing.T) {
	helpers.EnsureAccount(t, "appr-submit@test.local", models.RoleApprover, "facilities")
	token := helpers.Login(t, app, "appr-submit@test.local")

	draft := helpers.API_CreateDraft(t, app, token, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("fastpath")},
	})

	body, statusCode := helpers.API_Submit(t, app, token, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	reservation := helpers.DecodeReservation(t, body)
	require.Equal(t, models.StatusPublished, reservation.Status)
	require.NotNil(t, reservation.ReviewedAt)
	require.Equal(t, int64(2), reservation.Version)
}

func TestSubmitIncompleteDraftFailsWithFieldErrors(t *testing.T) {
	helpers.EnsureAccount(t, "req-invalid@test.local", models.RoleRequester, "facilities")
	token := helpers.Login(t, app, "req-invalid@test.local")

	raw := []byte(`{"title":"","startDateTime":"2026-10-12T10:00:00Z","endDateTime":"2026-10-12T12:00:00Z"}`)
	body, statusCode := helpers.RequestRunner(t, app,
		http.MethodPost, "/roomdesk/reservations", raw, &token)
	require.Equal(t, http.StatusCreated, statusCode)
	draft := helpers.DecodeReservation(t, body)

	body, statusCode = helpers.API_Submit(t, app, token, draft.EventID, draft.Version)
	require.Equal(t, http.StatusBadRequest, statusCode)

	var payload struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "ValidationError", payload.Error)

	missing := map[string]bool{}
	for _, field := range payload.Fields {
		missing[field.Field] = true
	}
	require.True(t, missing["title"])
	require.True(t, missing["rooms"])
	require.True(t, missing["categories"])
	require.True(t, missing["setupMinutes"])
	require.True(t, missing["doorOpenMinutes"])
}

func TestRejectThenResubmit(t *testing.T) {
	helpers.EnsureAccount(t, "req-rr@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-rr@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-rr@test.local")
	approver := helpers.Login(t, app, "appr-rr@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("reject")},
	})

	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	body, statusCode := helpers.API_Reject(t, app, approver, draft.EventID, "room closed that week", 2)
	require.Equal(t, http.StatusOK, statusCode)

	rejected := helpers.DecodeReservation(t, body)
	require.Equal(t, models.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewedAt)
	require.NotEmpty(t, rejected.ReviewedBy)

	body, statusCode = helpers.API_Resubmit(t, app, requester, draft.EventID, rejected.Version)
	require.Equal(t, http.StatusOK, statusCode)

	resubmitted := helpers.DecodeReservation(t, body)
	require.Equal(t, models.StatusPending, resubmitted.Status)
	require.Nil(t, resubmitted.ReviewedAt)
	require.Empty(t, resubmitted.ReviewedBy)

	statuses := []models.Status{}
	for _, entry := range resubmitted.StatusHistory {
		statuses = append(statuses, entry.Status)
	}
	require.Equal(t, []models.Status{
		models.StatusDraft,
		models.StatusPending,
		models.StatusRejected,
		models.StatusPending,
	}, statuses)
}

func TestRejectWithoutReasonFails(t *testing.T) {
	helpers.EnsureAccount(t, "req-noreason@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-noreason@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-noreason@test.local")
	approver := helpers.Login(t, app, "appr-noreason@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("noreason")},
	})
	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	body, statusCode := helpers.API_Reject(t, app, approver, draft.EventID, "", 2)
	helpers.ResponseErrorCheck(t, app, errmsg.RejectionReasonRequired, body, statusCode)
}

func TestReviewChangesSurfaceOnceAtPublish(t *testing.T) {
	helpers.EnsureAccount(t, "req-review@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-review@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-review@test.local")
	approver := helpers.Login(t, app, "appr-review@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("review")},
	})
	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	// approver tweaks the title while the record sits in review
	body, statusCode := helpers.API_Edit(t, app, approver, draft.EventID, 2, map[string]any{
		"title": "Team sync (moved to annex)",
	})
	require.Equal(t, http.StatusOK, statusCode)

	edited := helpers.DecodeReservation(t, body)
	require.Equal(t, models.StatusPending, edited.Status)
	require.Len(t, edited.RoomReservationData.ReviewChanges, 1)
	require.Equal(t, "title", edited.RoomReservationData.ReviewChanges[0].Field)

	body, statusCode = helpers.API_Publish(t, app, approver, draft.EventID, edited.Version, false)
	require.Equal(t, http.StatusOK, statusCode)

	var payload struct {
		Reservation   models.Reservation `json:"reservation"`
		ReviewChanges []models.Change    `json:"reviewChanges"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	require.Equal(t, models.StatusPublished, payload.Reservation.Status)
	require.Len(t, payload.ReviewChanges, 1)
	require.Equal(t, "title", payload.ReviewChanges[0].Field)

	// the change set is one-shot: the stored record no longer carries it
	require.Empty(t, payload.Reservation.RoomReservationData.ReviewChanges)
}

func TestPermissionDeniedForForeignPublish(t *testing.T) {
	helpers.EnsureAccount(t, "req-perm@test.local", models.RoleRequester, "facilities")
	requester := helpers.Login(t, app, "req-perm@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("perm")},
	})
	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	body, statusCode := helpers.API_Publish(t, app, requester, draft.EventID, 2, false)
	helpers.ResponseErrorCheck(t, app, errmsg.PermissionDenied, body, statusCode)
}
