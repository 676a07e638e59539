package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/realtime"
)

const memoryBusBuffer = 64

type memorySub struct {
	ch   chan realtime.SocialEvent
	done chan struct{}
}

// memoryBus fans events out to forwarders running in this process.
type memoryBus struct {
	log *logger.Logger

	mu     sync.RWMutex
	subs   map[*memorySub]struct{}
	closed bool

	forwarders sync.WaitGroup
}

func NewMemoryBus(log *logger.Logger) Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &memoryBus{
		log:  log.With("service", "MemorySocialBus"),
		subs: map[*memorySub]struct{}{},
	}
}

func (b *memoryBus) Publish(ctx context.Context, evt realtime.SocialEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory social bus closed")
	}
	for sub := range b.subs {
		select {
		case sub.ch <- evt:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onEvt func(evt realtime.SocialEvent)) error {
	if onEvt == nil {
		return fmt.Errorf("onEvt callback required")
	}
	sub := &memorySub{
		ch:   make(chan realtime.SocialEvent, memoryBusBuffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory social bus closed")
	}
	b.subs[sub] = struct{}{}
	b.forwarders.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.forwarders.Done()
		defer b.unsubscribe(sub)
		defer close(sub.done)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-sub.ch:
				if !ok {
					return
				}
				onEvt(evt)
			}
		}
	}()
	return nil
}

func (b *memoryBus) unsubscribe(sub *memorySub) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

// Close stops Publish, lets every forwarder deliver what is already queued, and
// waits for them to return.
func (b *memoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.ch)
	}
	b.mu.Unlock()

	b.forwarders.Wait()
	return nil
}
