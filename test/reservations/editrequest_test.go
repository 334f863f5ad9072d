package reservations

import (
	"net/http"
	"testing"
	"time"

	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
	"roomdesk/test/helpers"

	"github.com/stretchr/testify/require"
)

// publishForRequester walks a requester-owned draft through review so the
// requester ends up owning a published reservation.
func publishForRequester(t *testing.T, requester, approver string, spec helpers.DraftSpec) models.Reservation {
	draft := helpers.API_CreateDraft(t, app, requester, spec)

	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	body, statusCode := helpers.API_Publish(t, app, approver, draft.EventID, 2, false)
	require.Equal(t, http.StatusOK, statusCode)

	published := helpers.DecodeReservation(t, body)
	require.Equal(t, models.StatusPublished, published.Status)
	return published
}

func TestEditRequestApproveAppliesChanges(t *testing.T) {
	helpers.EnsureAccount(t, "req-er@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-er@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-er@test.local")
	approver := helpers.Login(t, app, "appr-er@test.local")

	published := publishForRequester(t, requester, approver, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("er-approve")},
	})

	body, statusCode := helpers.API_RequestEdit(t, app, requester, published.EventID, published.Version,
		map[string]any{"title": "Quarterly planning", "attendeeCount": 25},
		"need space for the whole team")
	require.Equal(t, http.StatusOK, statusCode)

	withRequest := helpers.DecodeReservation(t, body)
	require.NotNil(t, withRequest.PendingEditRequest)
	require.Len(t, withRequest.PendingEditRequest.RequestedChanges, 2)
	// the record's own fields are untouched until approval
	require.Equal(t, published.Title, withRequest.Title)

	body, statusCode = helpers.API_ResolveEditRequest(t, app, approver, published.EventID,
		"approve", withRequest.Version, "")
	require.Equal(t, http.StatusOK, statusCode)

	applied := helpers.DecodeReservation(t, body)
	require.Equal(t, "Quarterly planning", applied.Title)
	require.Equal(t, 25, applied.AttendeeCount)
	require.Nil(t, applied.PendingEditRequest)
}

func TestEditRequestRejectLeavesFieldsAlone(t *testing.T) {
	helpers.EnsureAccount(t, "req-err@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-err@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-err@test.local")
	approver := helpers.Login(t, app, "appr-err@test.local")

	published := publishForRequester(t, requester, approver, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("er-reject")},
	})

	body, statusCode := helpers.API_RequestEdit(t, app, requester, published.EventID, published.Version,
		map[string]any{"title": "Renamed event"}, "")
	require.Equal(t, http.StatusOK, statusCode)
	withRequest := helpers.DecodeReservation(t, body)

	// rejecting without a reason is refused
	body, statusCode = helpers.API_ResolveEditRequest(t, app, approver, published.EventID,
		"reject", withRequest.Version, "")
	helpers.ResponseErrorCheck(t, app, errmsg.RejectionReasonRequired, body, statusCode)

	body, statusCode = helpers.API_ResolveEditRequest(t, app, approver, published.EventID,
		"reject", withRequest.Version, "keep the original name")
	require.Equal(t, http.StatusOK, statusCode)

	rejected := helpers.DecodeReservation(t, body)
	require.Nil(t, rejected.PendingEditRequest)
	require.Equal(t, published.Title, rejected.Title)
}

func TestReviewerEditPrunesOverlappingProposal(t *testing.T) {
	helpers.EnsureAccount(t, "req-prune@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-prune@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-prune@test.local")
	approver := helpers.Login(t, app, "appr-prune@test.local")

	published := publishForRequester(t, requester, approver, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("er-prune")},
	})

	body, statusCode := helpers.API_RequestEdit(t, app, requester, published.EventID, published.Version,
		map[string]any{"title": "Proposed title", "attendeeCount": 40}, "")
	require.Equal(t, http.StatusOK, statusCode)
	withRequest := helpers.DecodeReservation(t, body)

	// reviewer edits the title directly; the proposal's title entry is
	// superseded and dropped, attendeeCount survives
	body, statusCode = helpers.API_Edit(t, app, approver, published.EventID, withRequest.Version,
		map[string]any{"title": "Reviewer title"})
	require.Equal(t, http.StatusOK, statusCode)

	pruned := helpers.DecodeReservation(t, body)
	require.Equal(t, "Reviewer title", pruned.Title)
	require.NotNil(t, pruned.PendingEditRequest)
	require.Len(t, pruned.PendingEditRequest.RequestedChanges, 1)
	require.Contains(t, pruned.PendingEditRequest.RequestedChanges, "attendeeCount")

	body, statusCode = helpers.API_ResolveEditRequest(t, app, approver, published.EventID,
		"approve", pruned.Version, "")
	require.Equal(t, http.StatusOK, statusCode)

	applied := helpers.DecodeReservation(t, body)
	require.Equal(t, "Reviewer title", applied.Title)
	require.Equal(t, 40, applied.AttendeeCount)
	require.Nil(t, applied.PendingEditRequest)
}

func TestSecondEditRequestIsRefusedWhileOnePending(t *testing.T) {
	helpers.EnsureAccount(t, "req-dup@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-dup@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-dup@test.local")
	approver := helpers.Login(t, app, "appr-dup@test.local")

	published := publishForRequester(t, requester, approver, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("er-dup")},
	})

	body, statusCode := helpers.API_RequestEdit(t, app, requester, published.EventID, published.Version,
		map[string]any{"attendeeCount": 10}, "")
	require.Equal(t, http.StatusOK, statusCode)
	withRequest := helpers.DecodeReservation(t, body)

	body, statusCode = helpers.API_RequestEdit(t, app, requester, published.EventID, withRequest.Version,
		map[string]any{"attendeeCount": 11}, "")
	helpers.ResponseErrorCheck(t, app, errmsg.EditRequestAlreadyPresent, body, statusCode)
}

func TestApprovedMoveIntoOccupiedWindowIsBlocked(t *testing.T) {
	helpers.EnsureAccount(t, "req-ermove@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-ermove@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-ermove@test.local")
	approver := helpers.Login(t, app, "appr-ermove@test.local")

	room := uniqueRoom("er-move")
	start := time.Date(2026, 11, 10, 9, 0, 0, 0, time.UTC)

	publishReservation(t, approver, helpers.DraftSpec{
		Start: start,
		End:   start.Add(2 * time.Hour),
		Rooms: []string{room},
	})

	mine := publishForRequester(t, requester, approver, helpers.DraftSpec{
		Start: start.Add(3 * time.Hour),
		End:   start.Add(4 * time.Hour),
		Rooms: []string{room},
	})

	body, statusCode := helpers.API_RequestEdit(t, app, requester, mine.EventID, mine.Version,
		map[string]any{
			"startDateTime": start.Add(time.Hour).Format(time.RFC3339),
			"endDateTime":   start.Add(2 * time.Hour).Format(time.RFC3339),
		}, "move earlier")
	require.Equal(t, http.StatusOK, statusCode)
	withRequest := helpers.DecodeReservation(t, body)

	// approving would collide with the occupied window, so it fails and the
	// proposal stays on the record
	_, statusCode = helpers.API_ResolveEditRequest(t, app, approver, mine.EventID,
		"approve", withRequest.Version, "")
	require.Equal(t, http.StatusConflict, statusCode)

	current := helpers.API_Get(t, app, approver, mine.EventID)
	require.NotNil(t, current.PendingEditRequest)
}
