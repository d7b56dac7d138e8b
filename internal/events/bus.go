package events

import (
	"context"
	"log/slog"
	"sync"
)

//go:generate mockgen -source=bus.go -destination=mock_events/bus.go -package=mock_events

// Bus fans messages out to every subscriber of a channel.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription delivers payloads until Close is called.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

const subscriptionBuffer = 64

// MemoryBus is an in-process Bus used when no Redis is configured.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[*memorySubscription]struct{}
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[*memorySubscription]struct{})}
}

// Publish delivers payload to current subscribers of channel. A subscriber whose
// buffer is full misses the message, like a slow Redis Pub/Sub client would.
func (b *MemoryBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[channel] {
		msg := make([]byte, len(payload))
		copy(msg, payload)
		select {
		case sub.ch <- msg:
		default:
			slog.WarnContext(ctx, "dropping message for slow subscriber", "bus.channel", channel)
		}
	}
	return nil
}

// Subscribe registers a new subscription on channel.
func (b *MemoryBus) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	sub := &memorySubscription{
		bus:     b,
		channel: channel,
		ch:      make(chan []byte, subscriptionBuffer),
	}

	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*memorySubscription]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	b.mu.Unlock()

	return sub, nil
}

type memorySubscription struct {
	bus     *MemoryBus
	channel string
	ch      chan []byte
	once    sync.Once
}

func (s *memorySubscription) Messages() <-chan []byte {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.channel], s)
		if len(s.bus.subs[s.channel]) == 0 {
			delete(s.bus.subs, s.channel)
		}
		s.bus.mu.Unlock()
		close(s.ch)
	})
	return nil
}
