package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"testing"
	"time"

	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
	"roomdesk/test/helpers"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type versionConflictBody struct {
	Error          string `json:"error"`
	ConflictType   string `json:"conflictType"`
	CurrentVersion int64  `json:"currentVersion"`
	CurrentStatus  string `json:"currentStatus"`
}

func TestStaleVersionIsRejectedWithCurrentState(t *testing.T) {
	helpers.EnsureAccount(t, "req-stale@test.local", models.RoleRequester, "facilities")
	token := helpers.Login(t, app, "req-stale@test.local")

	draft := helpers.API_CreateDraft(t, app, token, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("stale")},
	})
	_, statusCode := helpers.API_Submit(t, app, token, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	// a first edit moves the record to version 3
	_, statusCode = helpers.API_Edit(t, app, token, draft.EventID, 2, map[string]any{
		"attendeeCount": 12,
	})
	require.Equal(t, http.StatusOK, statusCode)

	// replaying the old token must fail and report where the record is now
	body, statusCode := helpers.API_Edit(t, app, token, draft.EventID, 2, map[string]any{
		"attendeeCount": 30,
	})
	require.Equal(t, http.StatusConflict, statusCode)

	var conflict versionConflictBody
	require.NoError(t, json.Unmarshal(body, &conflict))
	require.Equal(t, "VERSION_CONFLICT", conflict.Error)
	require.Equal(t, "data_changed", conflict.ConflictType)
	require.Equal(t, int64(3), conflict.CurrentVersion)
	require.Equal(t, string(models.StatusPending), conflict.CurrentStatus)
}

func TestEveryTransitionBumpsVersionByOne(t *testing.T) {
	helpers.EnsureAccount(t, "req-bump@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-bump@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-bump@test.local")
	approver := helpers.Login(t, app, "appr-bump@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("bump")},
	})
	require.Equal(t, int64(1), draft.Version)

	body, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, 1)
	require.Equal(t, http.StatusOK, statusCode)
	require.Equal(t, int64(2), helpers.DecodeReservation(t, body).Version)

	body, statusCode = helpers.API_Edit(t, app, requester, draft.EventID, 2, map[string]any{
		"attendeeCount": 20,
	})
	require.Equal(t, http.StatusOK, statusCode)
	require.Equal(t, int64(3), helpers.DecodeReservation(t, body).Version)

	body, statusCode = helpers.API_Publish(t, app, approver, draft.EventID, 3, false)
	require.Equal(t, http.StatusOK, statusCode)
	require.Equal(t, int64(4), helpers.DecodeReservation(t, body).Version)
}

func TestEditWithStaleVersionLeavesRecordUntouched(t *testing.T) {
	helpers.EnsureAccount(t, "req-untouched@test.local", models.RoleRequester, "facilities")
	token := helpers.Login(t, app, "req-untouched@test.local")

	draft := helpers.API_CreateDraft(t, app, token, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("untouched")},
	})
	_, statusCode := helpers.API_Submit(t, app, token, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	_, statusCode = helpers.API_Edit(t, app, token, draft.EventID, 1, map[string]any{
		"title": "should not land",
	})
	require.Equal(t, http.StatusConflict, statusCode)

	current := helpers.API_Get(t, app, token, draft.EventID)
	require.Equal(t, "Team sync", current.Title)
	require.Equal(t, int64(2), current.Version)
}

func TestCompareAndSwapLetsExactlyOneWriterThrough(t *testing.T) {
	helpers.EnsureAccount(t, "req-cas@test.local", models.RoleRequester, "facilities")
	token := helpers.Login(t, app, "req-cas@test.local")

	draft := helpers.API_CreateDraft(t, app, token, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("cas")},
	})
	_, statusCode := helpers.API_Submit(t, app, token, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	// two writers hold the same version token
	expectedVersion := int64(2)
	expectedStatus := models.StatusPending
	guard := models.UpdateGuard{
		ExpectedVersion: &expectedVersion,
		ExpectedStatus:  &expectedStatus,
		ModifiedBy:      "acct-req-cas@test.local",
	}

	first, err := models.UpdateReservation(context.Background(), draft.EventID, models.UpdateSpec{
		Set:   bson.M{"attendeeCount": 9},
		Guard: guard,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), first.Version)

	// the second swap misses and reports where the winner left the record
	_, err = models.UpdateReservation(context.Background(), draft.EventID, models.UpdateSpec{
		Set:   bson.M{"attendeeCount": 30},
		Guard: guard,
	})

	var conflict *errmsg.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, int64(3), conflict.CurrentVersion)
	require.Equal(t, string(models.StatusPending), conflict.CurrentStatus)

	current := helpers.API_Get(t, app, token, draft.EventID)
	require.Equal(t, 9, current.AttendeeCount)
	require.Equal(t, int64(3), current.Version)
}

func TestConcurrentPublishesOneWins(t *testing.T) {
	helpers.EnsureAccount(t, "req-race@test.local", models.RoleRequester, "facilities")
	helpers.EnsureAccount(t, "appr-race@test.local", models.RoleApprover, "operations")
	requester := helpers.Login(t, app, "req-race@test.local")
	approver := helpers.Login(t, app, "appr-race@test.local")

	draft := helpers.API_CreateDraft(t, app, requester, helpers.DraftSpec{
		Rooms: []string{uniqueRoom("race")},
	})
	_, statusCode := helpers.API_Submit(t, app, requester, draft.EventID, draft.Version)
	require.Equal(t, http.StatusOK, statusCode)

	type outcome struct {
		statusCode int
		err        error
	}

	results := make(chan outcome, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			req, err := http.NewRequest(
				http.MethodPost,
				fmt.Sprintf("/roomdesk/reservations/%s/publish", draft.EventID),
				bytes.NewBufferString(`{"_version":2}`),
			)
			if err != nil {
				results <- outcome{err: err}
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+approver)

			<-start
			res, err := app.Test(req, fiber.TestConfig{Timeout: 300 * time.Second})
			if err != nil {
				results <- outcome{err: err}
				return
			}
			res.Body.Close()
			results <- outcome{statusCode: res.StatusCode}
		}()
	}
	close(start)

	codes := []int{}
	for i := 0; i < 2; i++ {
		result := <-results
		require.NoError(t, result.err)
		codes = append(codes, result.statusCode)
	}
	sort.Ints(codes)
	require.Equal(t, []int{http.StatusOK, http.StatusConflict}, codes)

	// exactly one publish landed
	current := helpers.API_Get(t, app, approver, draft.EventID)
	require.Equal(t, models.StatusPublished, current.Status)
	require.Equal(t, int64(3), current.Version)
}
