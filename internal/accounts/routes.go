package accounts

import (
	"roomdesk/internal/models"

	"github.com/gofiber/fiber/v3"
)

func Routes(app fiber.Router) {
	accounts := app.Group("/accounts")

	accounts.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("PONG")
	})

	accounts.Post("/login", loginHandler)
	accounts.Get("/me", meHandler, models.AccountMiddleware)
	accounts.Patch("/me/notifications", notifyPreferencesHandler, models.AccountMiddleware)
}
