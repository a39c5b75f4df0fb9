// Package archive drains snapshot events into the Postgres store. It runs as
// one background goroutine; a write failure is logged and the event is
// dropped, never retried into the request path.
package archive

import (
	"context"
	"log"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/store"
)

type Worker struct {
	Store *store.Store
	Bus   events.Publisher
}

// Run consumes until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	ch := w.Bus.SubscribeSnapshotTaken()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			if _, err := w.Store.WriteSnapshot(ctx, store.SnapshotInput{
				Endpoint:    evt.Endpoint,
				ExternalID:  evt.ExternalID,
				PayloadJSON: evt.Payload,
			}); err != nil {
				log.Printf("[WARN] snapshot archive failed (endpoint=%s): %v", evt.Endpoint, err)
			}
		}
	}
}
