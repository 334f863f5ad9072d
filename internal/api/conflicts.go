package api

import (
	"context"
	"strings"
	"time"

	"roomdesk/internal/core"
	"roomdesk/internal/errmsg"
	"roomdesk/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// ConflictProbeHandler is the read-only conflict check the UI runs before
// submitting: it never mutates anything and never honors force.
// @Summary Probe scheduling conflicts
// @Tags Reservations
// @Security AccountAuth
// @Produce json
// @Param rooms query string true "comma-separated room ids"
// @Param start query string true "RFC3339 window start"
// @Param end query string true "RFC3339 window end"
// @Param exclude query string false "reservation id to exclude"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errmsg._ReservationInvalidRequest
// @Router /roomdesk/reservations/conflicts [get]
func ConflictProbeHandler(c fiber.Ctx) error {
	roomsParam := strings.TrimSpace(c.Query("rooms"))

	var rooms []string
	for _, room := range strings.Split(roomsParam, ",") {
		if trimmed := strings.TrimSpace(room); trimmed != "" {
			rooms = append(rooms, trimmed)
		}
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return utils.StatusError(c, errmsg.ReservationInvalidRequest)
	}

	conflicts, err := core.FindConflicts(context.Background(), rooms, start, end, c.Query("exclude"))
	if err != nil {
		return utils.RenderError(c, err)
	}

	if conflicts == nil {
		conflicts = []errmsg.ConflictSummary{}
	}

	return c.JSON(fiber.Map{
		"conflicts": conflicts,
	})
}
