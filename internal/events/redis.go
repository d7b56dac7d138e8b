package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("events")

// RedisBus is a Bus backed by Redis Pub/Sub, so several server instances share
// session updates.
type RedisBus struct {
	rdb *redis.Client
}

// NewRedisBus creates a new Redis-based Bus.
func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

// Publish sends payload on channel.
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	ctx, span := tracer.Start(ctx, "RedisBus.Publish", trace.WithAttributes(
		attribute.String("bus.channel", channel),
	))
	defer span.End()

	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish")
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

// Subscribe waits for Redis to confirm the subscription before returning, so no
// message published afterwards is missed.
func (b *RedisBus) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	ctx, span := tracer.Start(ctx, "RedisBus.Subscribe", trace.WithAttributes(
		attribute.String("bus.channel", channel),
	))
	defer span.End()

	pubsub := b.rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to subscribe")
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		ch:     make(chan []byte, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	go sub.forward()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan []byte
	done   chan struct{}
	once   sync.Once
	err    error
}

// forward copies payloads until the pubsub channel is closed by Close.
func (s *redisSubscription) forward() {
	defer close(s.ch)
	for msg := range s.pubsub.Channel() {
		select {
		case s.ch <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.ch
}

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.pubsub.Close()
	})
	return s.err
}
