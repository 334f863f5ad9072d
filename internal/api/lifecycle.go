package api

import (
	"context"
	"encoding/json"

	"roomdesk/internal/core"
	"roomdesk/internal/errmsg"
	"roomdesk/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// versionedRequest carries the optimistic-concurrency token every
// mutating request must present.
type versionedRequest struct {
	Version int64 `json:"_version"`
	Force   bool  `json:"force"`
}

// SubmitHandler moves a draft into review (or straight to published for
// reviewers).
// @Summary Submit draft
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body versionedRequest true "version token"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errmsg._ReservationInvalidRequest
// @Failure 409 {object} errmsg._VersionConflict
// @Router /roomdesk/reservations/{eventId}/submit [post]
func SubmitHandler(c fiber.Ctx) error {
	var req versionedRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.SubmitDraft(context.Background(), actor(c), c.Params("eventId"), req.Version, req.Force)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation":    result.Reservation,
		"calendarSynced": result.CalendarSynced,
	})
}

type editRequestBody struct {
	Version int64          `json:"_version"`
	Changes map[string]any `json:"changes"`
}

// EditHandler applies a field patch to a pending, rejected or published
// reservation.
// @Summary Edit reservation
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body editRequestBody true "field changes plus version token"
// @Success 200 {object} map[string]any
// @Failure 409 {object} errmsg._SchedulingConflict
// @Router /roomdesk/reservations/{eventId} [patch]
func EditHandler(c fiber.Ctx) error {
	var req editRequestBody
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	patch, err := core.ParsePatch(req.Changes)
	if err != nil || len(patch) == 0 {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.EditReservation(context.Background(), actor(c), c.Params("eventId"), patch, req.Version)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation":    result.Reservation,
		"calendarSynced": result.CalendarSynced,
	})
}

// PublishHandler confirms a pending reservation.
// @Summary Publish reservation
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body versionedRequest true "version token; force skips the conflict check"
// @Success 200 {object} map[string]any
// @Failure 409 {object} errmsg._SchedulingConflict
// @Router /roomdesk/reservations/{eventId}/publish [post]
func PublishHandler(c fiber.Ctx) error {
	var req versionedRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.Publish(context.Background(), actor(c), c.Params("eventId"), req.Version, req.Force)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation":    result.Reservation,
		"reviewChanges":  result.ReviewChanges,
		"calendarSynced": result.CalendarSynced,
	})
}

type rejectRequestBody struct {
	Version           int64  `json:"_version"`
	Reason            string `json:"reason"`
	AllowResubmission *bool  `json:"allowResubmission"`
}

// RejectHandler returns a pending reservation to its requester.
// @Summary Reject reservation
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body rejectRequestBody true "reason plus version token"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errmsg._ReservationInvalidRequest
// @Router /roomdesk/reservations/{eventId}/reject [post]
func RejectHandler(c fiber.Ctx) error {
	var req rejectRequestBody
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	allow := true
	if req.AllowResubmission != nil {
		allow = *req.AllowResubmission
	}

	result, err := core.RejectPending(context.Background(), actor(c), c.Params("eventId"), req.Reason, allow, req.Version)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation": result.Reservation,
	})
}

// ResubmitHandler returns a rejected reservation to the pending queue
// without edits.
// @Summary Resubmit reservation
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body versionedRequest true "version token"
// @Success 200 {object} map[string]any
// @Router /roomdesk/reservations/{eventId}/resubmit [post]
func ResubmitHandler(c fiber.Ctx) error {
	var req versionedRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.Resubmit(context.Background(), actor(c), c.Params("eventId"), req.Version)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation": result.Reservation,
	})
}

type removeRequestBody struct {
	Version int64  `json:"_version"`
	Reason  string `json:"reason"`
}

// RemoveHandler soft-deletes (reviewer) or cancels (owner) a reservation.
// @Summary Remove reservation
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body removeRequestBody true "reason plus version token"
// @Success 200 {object} map[string]any
// @Router /roomdesk/reservations/{eventId} [delete]
func RemoveHandler(c fiber.Ctx) error {
	var req removeRequestBody
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.Remove(context.Background(), actor(c), c.Params("eventId"), req.Reason, req.Version)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation": result.Reservation,
	})
}

// RestoreHandler brings a removed reservation back to its prior status.
// @Summary Restore reservation
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body versionedRequest true "version token; force (admin only) skips the conflict check"
// @Success 200 {object} map[string]any
// @Failure 409 {object} errmsg._SchedulingConflict
// @Router /roomdesk/reservations/{eventId}/restore [post]
func RestoreHandler(c fiber.Ctx) error {
	var req versionedRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.Restore(context.Background(), actor(c), c.Params("eventId"), req.Version, req.Force)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation":    result.Reservation,
		"calendarSynced": result.CalendarSynced,
	})
}
