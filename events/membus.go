package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jrsteele09/lia-server/events"

// MemBusConfig configures an in-memory event bus.
type MemBusConfig struct {
	// SubscriberBufferSize is the channel buffer size per subscriber (default: 64).
	SubscriberBufferSize int
	// ReplaySize is how many recent events per channel are kept for new subscribers (default: 16).
	ReplaySize int
	// Meter records publish/deliver/drop counters (default: the global meter provider).
	Meter metric.Meter
	// NowTime stamps events (default: time.Now).
	NowTime func() time.Time
}

// MemBus is an in-memory event bus with a bounded per-channel replay window.
type MemBus struct {
	mu      sync.Mutex
	subs    map[string]map[*memSub]struct{} // channel -> subscribers
	history map[string]*ring                // channel -> recent events
	nextID  uint64
	bufSize int
	replay  int
	nowTime func() time.Time
	closed  bool

	published metric.Int64Counter
	delivered metric.Int64Counter
	dropped   metric.Int64Counter
}

// NewMemBus creates a new in-memory event bus with the given configuration.
func NewMemBus(config MemBusConfig) (*MemBus, error) {
	replay := config.ReplaySize
	if replay <= 0 {
		replay = 16
	}
	bufSize := config.SubscriberBufferSize
	if bufSize <= 0 {
		bufSize = 64
	}
	// A new subscriber must be able to hold the whole replay window.
	if bufSize < replay {
		bufSize = replay
	}
	meter := config.Meter
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	nowTime := config.NowTime
	if nowTime == nil {
		nowTime = time.Now
	}

	b := &MemBus{
		subs:    make(map[string]map[*memSub]struct{}),
		history: make(map[string]*ring),
		bufSize: bufSize,
		replay:  replay,
		nowTime: nowTime,
	}

	var err error
	if b.published, err = meter.Int64Counter("lia.events.published",
		metric.WithDescription("Number of events published"),
	); err != nil {
		return nil, errors.Wrap(err, "[NewMemBus] published counter")
	}
	if b.delivered, err = meter.Int64Counter("lia.events.delivered",
		metric.WithDescription("Number of events handed to subscribers"),
	); err != nil {
		return nil, errors.Wrap(err, "[NewMemBus] delivered counter")
	}
	if b.dropped, err = meter.Int64Counter("lia.events.dropped",
		metric.WithDescription("Number of events dropped because a subscriber buffer was full"),
	); err != nil {
		return nil, errors.Wrap(err, "[NewMemBus] dropped counter")
	}
	return b, nil
}

// Publish records the event in the channel history and sends it to every
// current subscriber of channel. Slow subscribers lose the event rather than
// block the publisher. Publishing on a closed bus is a no-op.
func (b *MemBus) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "[MemBus Publish] failed to encode payload for %s", channel)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.nextID++
	event := Event{
		ID:      b.nextID,
		Channel: channel,
		Payload: data,
		Time:    b.nowTime(),
	}

	h, ok := b.history[channel]
	if !ok {
		h = newRing(b.replay)
		b.history[channel] = h
	}
	h.push(event)

	attrs := metric.WithAttributes(attribute.String("kind", channelKind(channel)))
	b.published.Add(ctx, 1, attrs)

	for sub := range b.subs[channel] {
		if sub.send(event) {
			b.delivered.Add(ctx, 1, attrs)
		} else {
			b.dropped.Add(ctx, 1, attrs)
		}
	}
	return nil
}

// Subscribe registers a subscriber for channel. History replay and
// registration happen under one lock so no event is missed or repeated.
func (b *MemBus) Subscribe(channel string) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &memSub{
		ch:      make(chan Event, b.bufSize),
		channel: channel,
		bus:     b,
	}
	if b.closed {
		sub.close()
		return sub
	}

	if h, ok := b.history[channel]; ok {
		for _, event := range h.items() {
			sub.send(event)
		}
	}

	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*memSub]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	return sub
}

// Close shuts down the bus and all active subscriptions.
func (b *MemBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for _, subs := range b.subs {
		for sub := range subs {
			sub.close()
		}
	}
	b.subs = make(map[string]map[*memSub]struct{})
	return nil
}

func (b *MemBus) unsubscribe(sub *memSub) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subs[sub.channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subs, sub.channel)
		}
	}
}

// subscriberCount is used by tests to observe unsubscription.
func (b *MemBus) subscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

func channelKind(channel string) string {
	if _, kind, ok := ParseChannel(channel); ok {
		return string(kind)
	}
	return "other"
}

// memSub is an in-memory subscription.
type memSub struct {
	ch      chan Event
	channel string
	bus     *MemBus
	mu      sync.Mutex
	closed  bool
}

// Events returns a channel of events for this subscription.
func (s *memSub) Events() <-chan Event {
	return s.ch
}

// Close unsubscribes and releases resources. Safe to call more than once.
func (s *memSub) Close() error {
	s.bus.unsubscribe(s)
	s.close()
	return nil
}

// close performs the actual channel close, guarded against double-close.
func (s *memSub) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// send delivers an event to the subscription's channel.
// If the channel is full or the subscription is closed, the event is dropped.
func (s *memSub) send(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- event:
		return true
	default:
		return false
	}
}

// ring keeps the last n events in publish order.
type ring struct {
	buf   []Event
	start int
	size  int
}

func newRing(n int) *ring {
	return &ring{buf: make([]Event, n)}
}

func (r *ring) push(e Event) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = e
		r.size++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) items() []Event {
	out := make([]Event, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

// Compile-time interface checks.
var _ Bus = (*MemBus)(nil)
var _ Subscription = (*memSub)(nil)
