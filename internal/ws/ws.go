package ws

import (
	"encoding/json"

	"roomdesk/internal/env"

	fws "github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

// Upgrader upgrades HTTP connections to WebSocket connections.
var Upgrader = fws.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		// In drain mode, reject new WebSocket connections with 503
		if env.DRAIN_MODE {
			ctx.SetStatusCode(503)
			ctx.SetBodyString(`{"error": "Service is draining - please reconnect to active instance"}`)
			return false
		}
		return true
	},
}

// WriteStatus sends a status message to the websocket client.
func WriteStatus(conn *fws.Conn, status string, message string) error {
	payload, err := json.Marshal(map[string]string{
		"type":    status,
		"message": message,
	})
	if err != nil {
		return err
	}
	return conn.WriteMessage(fws.TextMessage, payload)
}

// WriteActivity forwards one reservation-activity record to the client.
// The record is already JSON; it is framed but not re-encoded.
func WriteActivity(conn *fws.Conn, record []byte) error {
	payload, err := json.Marshal(map[string]json.RawMessage{
		"type":     json.RawMessage(`"activity"`),
		"activity": json.RawMessage(record),
	})
	if err != nil {
		return err
	}
	return conn.WriteMessage(fws.TextMessage, payload)
}
