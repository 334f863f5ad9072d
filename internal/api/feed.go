package api

import (
	"context"

	"roomdesk/internal/db"
	"roomdesk/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// FeedHandler streams the live reservation-activity channel to reviewer
// clients over WebSocket. The subscription lives exactly as long as the
// connection.
// @Summary Live activity feed
// @Tags Reservations
// @Security AccountAuth
// @Router /roomdesk/feed [get]
func FeedHandler(c fiber.Ctx) error {
	return ws.StreamWebSocket(c, func(ctx context.Context, writer *ws.FeedWriter) error {
		sub := db.SubscribeActivity(ctx)
		defer sub.Close()

		messages := sub.Channel()

		writer.SendStatus("info", "activity stream started")

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case msg, ok := <-messages:
				if !ok {
					return nil
				}
				if err := writer.Send([]byte(msg.Payload)); err != nil {
					return err
				}
			}
		}
	})
}
