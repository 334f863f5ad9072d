package api

import (
	"context"
	"encoding/json"

	"roomdesk/internal/core"
	"roomdesk/internal/errmsg"
	"roomdesk/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type editRequestProposal struct {
	Version int64          `json:"_version"`
	Changes map[string]any `json:"changes"`
	Reason  string         `json:"reason"`
}

// RequestEditHandler attaches a requester's change proposal to a
// published reservation.
// @Summary Request post-publish edit
// @Tags Edit Requests
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body editRequestProposal true "proposed changes"
// @Success 200 {object} map[string]any
// @Failure 409 {object} errmsg._ReservationInvalidRequest
// @Router /roomdesk/reservations/{eventId}/edit-request [post]
func RequestEditHandler(c fiber.Ctx) error {
	var req editRequestProposal
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.RequestEdit(context.Background(), actor(c), c.Params("eventId"), req.Changes, req.Reason, req.Version)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation": result.Reservation,
	})
}

// ApproveEditRequestHandler applies the pending proposal and clears it.
// @Summary Approve edit request
// @Tags Edit Requests
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body versionedRequest true "version token"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errmsg._ReservationNotFound
// @Router /roomdesk/reservations/{eventId}/edit-request/approve [post]
func ApproveEditRequestHandler(c fiber.Ctx) error {
	var req versionedRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.ApproveEditRequest(context.Background(), actor(c), c.Params("eventId"), req.Version)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation":    result.Reservation,
		"calendarSynced": result.CalendarSynced,
	})
}

type editRequestRejection struct {
	Version int64  `json:"_version"`
	Reason  string `json:"reason"`
}

// RejectEditRequestHandler discards the pending proposal.
// @Summary Reject edit request
// @Tags Edit Requests
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param eventId path string true "reservation id"
// @Param payload body editRequestRejection true "reason plus version token"
// @Success 200 {object} map[string]any
// @Router /roomdesk/reservations/{eventId}/edit-request/reject [post]
func RejectEditRequestHandler(c fiber.Ctx) error {
	var req editRequestRejection
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	result, err := core.RejectEditRequest(context.Background(), actor(c), c.Params("eventId"), req.Reason, req.Version)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation": result.Reservation,
	})
}
