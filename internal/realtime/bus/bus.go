package bus

import (
	"context"

	"github.com/yungbote/dwitter-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.SocialEvent) error
	// StartForwarder delivers every event published after it returns to onEvt
	// until ctx is cancelled or the bus is closed.
	StartForwarder(ctx context.Context, onEvt func(evt realtime.SocialEvent)) error
	// Close stops publishing and waits for running forwarders to return. The
	// in-process bus drains already published events first.
	Close() error
}
