package httpapi

import (
	"context"
	"encoding/json"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/paragon"
)

// publishSnapshot hands a fetched envelope to the archive bus. Bus may be
// nil (archiving disabled); marshal failures are impossible for a decoded
// envelope and are ignored.
func publishSnapshot(ctx context.Context, bus events.Publisher, endpoint, externalID string, env *paragon.Envelope) {
	if bus == nil || env == nil {
		return
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	bus.PublishSnapshotTaken(ctx, events.SnapshotTaken{
		Endpoint:   endpoint,
		ExternalID: externalID,
		Payload:    payload,
	})
}
