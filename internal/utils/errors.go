package utils

import (
	"errors"
	"net/http"

	"roomdesk/internal/errmsg"

	"github.com/gofiber/fiber/v3"
)

func Error(c fiber.Ctx, statusCode int, err error) error {
	return c.Status(statusCode).JSON(map[string]string{
		"message": err.Error(),
	})
}

func StatusError(c fiber.Ctx, se errmsg.StatusError) error {
	return c.Status(se.StatusCode).JSON(map[string]string{
		"message": se.Message,
	})
}

// RenderError writes the wire shape for every error kind the lifecycle can
// produce. Scheduling and version conflicts carry structured payloads; the
// rest collapse to the plain status/message form.
func RenderError(c fiber.Ctx, err error) error {
	var se errmsg.StatusError
	if errors.As(err, &se) {
		return StatusError(c, se)
	}

	var vc *errmsg.VersionConflictError
	if errors.As(err, &vc) {
		return c.Status(vc.StatusCode).JSON(fiber.Map{
			"error":          "VERSION_CONFLICT",
			"message":        vc.Message,
			"conflictType":   "data_changed",
			"currentVersion": vc.CurrentVersion,
			"currentStatus":  vc.CurrentStatus,
		})
	}

	var sc *errmsg.SchedulingConflictError
	if errors.As(err, &sc) {
		return c.Status(sc.StatusCode).JSON(fiber.Map{
			"error":     "SchedulingConflict",
			"message":   sc.Message,
			"conflicts": sc.Conflicts,
			"_version":  sc.Version,
		})
	}

	var ve *errmsg.ValidationError
	if errors.As(err, &ve) {
		return c.Status(ve.StatusCode).JSON(fiber.Map{
			"error":   "ValidationError",
			"message": ve.Message,
			"fields":  ve.Fields,
		})
	}

	return c.Status(http.StatusInternalServerError).JSON(map[string]string{
		"message": "internal server error: " + err.Error(),
	})
}
