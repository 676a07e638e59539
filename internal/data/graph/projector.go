package graph

import (
	"context"
	"time"

	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/realtime"
	"github.com/yungbote/dwitter-backend/internal/realtime/bus"
)

const applyTimeout = 10 * time.Second

// Applier is the projection target; *SocialGraph implements it.
type Applier interface {
	Enabled() bool
	Apply(ctx context.Context, evt realtime.SocialEvent) error
}

// StartProjector subscribes g to b. Projection errors are logged; the relational store stays authoritative.
// Each Apply gets its own deadline detached from ctx, so events drained while the bus
// closes are still written.
func StartProjector(ctx context.Context, b bus.Bus, g Applier, log *logger.Logger) error {
	if b == nil || g == nil || !g.Enabled() {
		return nil
	}
	if log == nil {
		log = logger.Nop()
	}
	projLog := log.With("service", "SocialGraphProjector")
	base := context.WithoutCancel(ctx)
	return b.StartForwarder(ctx, func(evt realtime.SocialEvent) {
		applyCtx, cancel := context.WithTimeout(base, applyTimeout)
		defer cancel()
		if err := g.Apply(applyCtx, evt); err != nil {
			projLog.Warn("graph projection failed", "event", string(evt.Type), "error", err)
		}
	})
}
