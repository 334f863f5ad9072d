package internal

import (
	"log"
	"strings"

	"roomdesk/internal/accounts"
	"roomdesk/internal/api"
	"roomdesk/internal/core"
	"roomdesk/internal/db"
	"roomdesk/internal/env"
	"roomdesk/internal/events"
	"roomdesk/internal/graph"
	"roomdesk/internal/notify"

	"github.com/gofiber/fiber/v3"
)

func SetupApp(deployment string, envRoot string, appVersion string) *fiber.App {
	app := fiber.New()

	env.Init(envRoot, appVersion)

	deploy := strings.TrimSpace(deployment)

	if err := db.InitDB(deploy); err != nil {
		log.Fatal("Could not connect to MongoDB")
		return nil
	}

	if err := db.InitCache(deploy); err != nil {
		log.Fatal("Could not connect to Redis")
		return nil
	}

	if db.AuditLog != nil {
		events.Em = events.NewEmitter(db.AuditLog, deploy)
	} else {
		events.Em = nil
	}

	notify.Enabled = db.RDB != nil

	if env.GRAPH_BASE_URL != "" {
		core.Cal = graph.NewClient(
			env.GRAPH_BASE_URL,
			env.GRAPH_TOKEN,
			env.GRAPH_CALENDAR_OWNER,
			env.GRAPH_CALENDAR_ID,
		)
	} else {
		core.Cal = nil
	}

	roomdesk := app.Group("/roomdesk")

	roomdesk.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("PONG")
	})

	roomdesk.Get("/version", func(c fiber.Ctx) error {
		return c.SendString("v" + env.VERSION)
	})

	accounts.Routes(roomdesk)
	api.Routes(roomdesk)

	return app
}
