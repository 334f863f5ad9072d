package events

import (
	"context"
	"time"

	"roomdesk/internal/models"
)

func (e *Emitter) Emit(entry models.AuditEntry) {
	entry.TimeStamp = time.Now().UTC()

	select {
	case e.buf <- entry:
	default:
		ctx, cancel := context.WithTimeout(
			context.Background(),
			2*time.Second,
		)
		defer cancel()

		_ = e.InsertOne(ctx, entry)
	}
}
