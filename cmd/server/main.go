// @title RoomDesk Reservation API
// @version 1.0.0
// @description Room-reservation lifecycle API for a shared organizational calendar.
// @BasePath /roomdesk
// @securityDefinitions.apikey AccountAuth
// @in header
// @name Authorization
// @description Provide the account bearer token as `Bearer <token>`.

// @Tag.name Roomdesk Meta
// @Tag.description Operational probes and metadata about the reservation service.

// @Tag.name Accounts Auth
// @Tag.description Authentication flows for reservation accounts.

// @Tag.name Reservations
// @Tag.description Reservation lifecycle: drafts, review, publication, removal and restore.

// @Tag.name Edit Requests
// @Tag.description Post-publish change proposals and their review.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"roomdesk/internal"
	"roomdesk/internal/env"
	"roomdesk/internal/swagger"

	"github.com/gofiber/fiber/v3"
)

func main() {
	deployment := flag.String("deployment", "", "deployment profile (dev|test|prod)")
	portFlag := flag.String("port", "", "port to listen on")
	envRoot := flag.String("env-root", "", "directory containing environment files")
	appVersion := flag.String("app-version", "", "application version override")

	flag.Parse()

	deploy := strings.TrimSpace(*deployment)
	if deploy == "" {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Println("Usage: server --deployment <type> --port <port> [--env-root <dir>] [--app-version <version>]")
			os.Exit(1)
		}
		deploy = strings.TrimSpace(args[0])
	}

	if deploy == "" {
		log.Fatal("deployment is required")
	}

	port := strings.TrimSpace(*portFlag)
	if port == "" {
		log.Fatal("port is required")
	}

	app := internal.SetupApp(deploy, *envRoot, *appVersion)
	swagger.Register(app)

	fmt.Println("APP VERSION:", env.VERSION)

	if err := app.Listen(fmt.Sprintf(":%s", port), fiber.ListenConfig{
		EnablePrefork: env.PREFORK,
	}); err != nil {
		log.Fatalf("Error listening on port %s: %v", port, err)
	}
}
