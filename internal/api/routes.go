package api

import (
	"roomdesk/internal/models"

	"github.com/gofiber/fiber/v3"
)

// Routes wires the reservation lifecycle endpoints. Everything requires a
// valid bearer token; per-transition role checks live in the core guards.
func Routes(app fiber.Router) {
	reservations := app.Group("/reservations", models.AccountMiddleware)

	reservations.Post("/", CreateReservationHandler)
	reservations.Get("/", ListReservationsHandler)
	reservations.Get("/conflicts", ConflictProbeHandler)
	reservations.Get("/:eventId", GetReservationHandler)
	reservations.Get("/:eventId/audit", AuditTrailHandler)

	reservations.Post("/:eventId/submit", SubmitHandler)
	reservations.Patch("/:eventId", EditHandler)
	reservations.Post("/:eventId/publish", PublishHandler)
	reservations.Post("/:eventId/reject", RejectHandler)
	reservations.Post("/:eventId/resubmit", ResubmitHandler)

	reservations.Post("/:eventId/edit-request", RequestEditHandler)
	reservations.Post("/:eventId/edit-request/approve", ApproveEditRequestHandler)
	reservations.Post("/:eventId/edit-request/reject", RejectEditRequestHandler)

	reservations.Delete("/:eventId", RemoveHandler)
	reservations.Post("/:eventId/restore", RestoreHandler)

	app.Get("/feed", FeedHandler, models.AccountMiddleware, models.RequireReviewer)
}
