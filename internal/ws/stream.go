package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"
)

var errClientClosed = errors.New("websocket closed by client")

// FeedWriter pushes activity records over one WebSocket connection.
type FeedWriter struct {
	conn *websocket.Conn
}

// Send forwards one activity record, reporting a closed client as an
// error so the streamer can stop.
func (w *FeedWriter) Send(record []byte) error {
	if err := WriteActivity(w.conn, record); err != nil {
		return errClientClosed
	}
	return nil
}

func (w *FeedWriter) SendStatus(level, message string) {
	_ = WriteStatus(w.conn, level, message)
}

// StreamWebSocket upgrades to WebSocket and streams using the provided
// streamer function. The streamer's context is cancelled as soon as the
// client goes away.
func StreamWebSocket(c fiber.Ctx, streamer func(ctx context.Context, writer *FeedWriter) error) error {
	type requestCtxProvider interface {
		RequestCtx() *fasthttp.RequestCtx
	}

	provider, ok := any(c).(requestCtxProvider)
	if !ok {
		return fiber.ErrInternalServerError
	}

	return Upgrader.Upgrade(provider.RequestCtx(), func(conn *websocket.Conn) {
		defer conn.Close()

		ctx := context.Background()

		closed := make(chan struct{})
		var once sync.Once
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					once.Do(func() { close(closed) })
					return
				}
			}
		}()

		writer := &FeedWriter{conn: conn}

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			<-closed
			cancel()
		}()

		err := streamer(streamCtx, writer)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errClientClosed) {
			_ = WriteStatus(conn, "error", "activity stream failed")
		}

		_ = WriteStatus(conn, "info", "activity stream ended")
	})
}
