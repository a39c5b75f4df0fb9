// Package events is a small in-process pub/sub bus. Handlers publish a
// snapshot event for each upstream payload they fetch; the archive worker
// consumes them. Publishing never blocks a request: when the buffer is full
// the event is dropped.
package events

import (
	"context"
)

// SnapshotTaken is emitted after a successful upstream fetch, carrying the
// raw payload for the optional write-behind archive.
type SnapshotTaken struct {
	Endpoint   string
	ExternalID string
	Payload    []byte
}

type Publisher interface {
	PublishSnapshotTaken(ctx context.Context, evt SnapshotTaken)
	SubscribeSnapshotTaken() <-chan SnapshotTaken
}

type inMemory struct{ ch chan SnapshotTaken }

func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan SnapshotTaken, buffer)}
}

func (m *inMemory) PublishSnapshotTaken(_ context.Context, evt SnapshotTaken) {
	select {
	case m.ch <- evt:
	default:
	}
}

func (m *inMemory) SubscribeSnapshotTaken() <-chan SnapshotTaken { return m.ch }
