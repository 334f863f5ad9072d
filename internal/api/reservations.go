package api

import (
	"context"
	"encoding/json"
	"time"

	"roomdesk/internal/core"
	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
	"roomdesk/internal/utils"

	"github.com/gofiber/fiber/v3"
)

func actor(c fiber.Ctx) *models.Account {
	var account models.Account
	utils.GetLocals(c, "account", &account)
	return &account
}

type createReservationRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartDateTime   time.Time `json:"startDateTime"`
	EndDateTime     time.Time `json:"endDateTime"`
	Rooms           []string  `json:"rooms"`
	RoomNames       []string  `json:"roomNames"`
	Categories      []string  `json:"categories"`
	AttendeeCount   int       `json:"attendeeCount"`
	SetupMinutes    int       `json:"setupMinutes"`
	DoorOpenMinutes int       `json:"doorOpenMinutes"`
	TeardownMinutes int       `json:"teardownMinutes"`
	Phone           string    `json:"phone"`
}

// CreateReservationHandler inserts a new draft owned by the caller.
// @Summary Create draft reservation
// @Tags Reservations
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param payload body createReservationRequest true "Draft content"
// @Success 201 {object} models.Reservation
// @Failure 400 {object} errmsg._ReservationInvalidRequest
// @Router /roomdesk/reservations [post]
func CreateReservationHandler(c fiber.Ctx) error {
	var req createReservationRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	reservation, err := core.CreateDraft(context.Background(), actor(c), core.DraftInput{
		Title:           req.Title,
		Description:     req.Description,
		StartDateTime:   req.StartDateTime,
		EndDateTime:     req.EndDateTime,
		Rooms:           req.Rooms,
		RoomNames:       req.RoomNames,
		Categories:      req.Categories,
		AttendeeCount:   req.AttendeeCount,
		SetupMinutes:    req.SetupMinutes,
		DoorOpenMinutes: req.DoorOpenMinutes,
		TeardownMinutes: req.TeardownMinutes,
		Phone:           req.Phone,
	})
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reservation": reservation,
	})
}

// ListReservationsHandler returns reservations, optionally filtered by
// status. Removed records show up only with includeRemoved=true or an
// explicit status filter.
// @Summary List reservations
// @Tags Reservations
// @Security AccountAuth
// @Produce json
// @Param status query string false "status filter"
// @Param includeRemoved query bool false "include deleted/cancelled"
// @Success 200 {object} map[string]any
// @Router /roomdesk/reservations [get]
func ListReservationsHandler(c fiber.Ctx) error {
	status := models.Status(c.Query("status"))
	includeRemoved := c.Query("includeRemoved") == "true"

	reservations, err := models.ListReservations(context.Background(), status, includeRemoved)
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservations": reservations,
	})
}

// GetReservationHandler returns one reservation by its public id.
// @Summary Get reservation
// @Tags Reservations
// @Security AccountAuth
// @Produce json
// @Param eventId path string true "reservation id"
// @Success 200 {object} models.Reservation
// @Failure 404 {object} errmsg._ReservationNotFound
// @Router /roomdesk/reservations/{eventId} [get]
func GetReservationHandler(c fiber.Ctx) error {
	reservation, err := models.GetReservationByEventID(context.Background(), c.Params("eventId"))
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservation": reservation,
	})
}

// AuditTrailHandler returns the immutable audit trail for one
// reservation, oldest entry first.
// @Summary Reservation audit trail
// @Tags Reservations
// @Security AccountAuth
// @Produce json
// @Param eventId path string true "reservation id"
// @Success 200 {object} map[string]any
// @Router /roomdesk/reservations/{eventId}/audit [get]
func AuditTrailHandler(c fiber.Ctx) error {
	entries, err := models.ListAuditEntries(context.Background(), c.Params("eventId"))
	if err != nil {
		return utils.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries": entries,
	})
}
