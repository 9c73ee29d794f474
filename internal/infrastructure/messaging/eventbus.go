// Package messaging carries registrar events between components. The local
// bus dispatches in-process; the Redis bus fans events out to other
// registrar processes over Pub/Sub and feeds remote events back to local
// subscribers.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/pkg/circuitbreaker"
)

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNilEvent is returned when publishing a nil event.
	ErrNilEvent = errors.New("event cannot be nil")
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "campus-records:events"

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// LocalBusConfig configures a LocalBus.
type LocalBusConfig struct {
	// Async runs handlers on background goroutines bounded by Workers.
	// Synchronous dispatch keeps report output ordered, so it is the default.
	Async bool

	// Workers bounds concurrent async handlers.
	Workers int

	Logger *slog.Logger
}

// LocalBus dispatches events to handlers in the same process.
type LocalBus struct {
	mu       sync.RWMutex
	byType   map[shared.EventType][]shared.EventHandler
	wildcard []shared.EventHandler
	async    bool
	slots    chan struct{}
	logger   *slog.Logger
	stats    *BusStats
	closed   bool
	wg       sync.WaitGroup
}

// NewLocalBus creates a local bus.
func NewLocalBus(cfg LocalBusConfig) *LocalBus {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	return &LocalBus{
		byType: make(map[shared.EventType][]shared.EventHandler),
		async:  cfg.Async,
		slots:  make(chan struct{}, cfg.Workers),
		logger: cfg.Logger,
		stats:  newBusStats(),
	}
}

// Subscribe registers a handler for one event type.
func (b *LocalBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.byType[eventType] = append(b.byType[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for every event.
func (b *LocalBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.wildcard = append(b.wildcard, handler)
	return nil
}

// Publish delivers the event to type subscribers first, then to wildcard
// subscribers. Handler errors are logged and counted, never returned.
func (b *LocalBus) Publish(event shared.Event) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.byType[event.EventType()])+len(b.wildcard))
	handlers = append(handlers, b.byType[event.EventType()]...)
	handlers = append(handlers, b.wildcard...)
	if b.async {
		// Added under the lock so Close cannot reach wg.Wait first.
		b.wg.Add(len(handlers))
	}
	b.mu.RUnlock()

	b.stats.published(event.EventType())

	for _, h := range handlers {
		if b.async {
			b.runAsync(event, h)
			continue
		}
		b.run(event, h)
	}
	return nil
}

// runAsync expects the caller to have done wg.Add for it.
func (b *LocalBus) runAsync(event shared.Event, h shared.EventHandler) {
	go func() {
		defer b.wg.Done()

		b.slots <- struct{}{}
		defer func() { <-b.slots }()
		b.run(event, h)
	}()
}

func (b *LocalBus) run(event shared.Event, h shared.EventHandler) {
	start := time.Now()
	err := h(event)
	b.stats.handled(time.Since(start), err == nil)

	if err != nil {
		b.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
	}
}

// Close stops accepting events and waits until every event already
// accepted has been handled.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

// Stats returns a snapshot of the bus counters.
func (b *LocalBus) Stats() BusStatsSnapshot {
	return b.stats.snapshot()
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// RedisClient is the Pub/Sub surface the Redis bus needs.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error)
	Close() error
}

// RedisMessage is one message received from a channel.
type RedisMessage struct {
	Channel string
	Payload string
	Err     error
}

// RedisBusConfig configures a RedisBus.
type RedisBusConfig struct {
	Client  RedisClient
	Channel string

	// InstanceID identifies this process so it can skip its own echoes.
	// Generated when empty.
	InstanceID string

	// Breaker guards Redis publishes. While it is open events are only
	// delivered locally. Defaults to circuitbreaker.ForPublish.
	Breaker *circuitbreaker.Breaker

	Local  LocalBusConfig
	Logger *slog.Logger
}

// RedisBus publishes every event to a Redis channel and to local subscribers.
// Events arriving from other instances are delivered to local subscribers.
type RedisBus struct {
	client     RedisClient
	local      *LocalBus
	breaker    *circuitbreaker.Breaker
	channel    string
	instanceID string
	logger     *slog.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
}

// NewRedisBus subscribes to the channel and starts the receive loop.
func NewRedisBus(cfg RedisBusConfig) (*RedisBus, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Local.Logger == nil {
		cfg.Local.Logger = cfg.Logger
	}
	log := cfg.Logger.With("component", "redis_bus")
	if cfg.Breaker == nil {
		cfg.Breaker = circuitbreaker.ForPublish(func(name string, from, to circuitbreaker.State) {
			log.Warn("publish breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		client:     cfg.Client,
		local:      NewLocalBus(cfg.Local),
		breaker:    cfg.Breaker,
		channel:    cfg.Channel,
		instanceID: cfg.InstanceID,
		logger:     log,
		ctx:        ctx,
		cancel:     cancel,
	}

	messages, err := cfg.Client.Subscribe(ctx, cfg.Channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", cfg.Channel, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.receive(messages)
	}()

	return b, nil
}

// InstanceID returns the identifier stamped on outgoing envelopes.
func (b *RedisBus) InstanceID() string { return b.instanceID }

func (b *RedisBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	return b.local.Subscribe(eventType, handler)
}

func (b *RedisBus) SubscribeAll(handler shared.EventHandler) error {
	return b.local.SubscribeAll(handler)
}

// Publish sends the event to Redis, then to local subscribers. A Redis
// failure, or an open breaker, is logged and does not prevent local delivery.
func (b *RedisBus) Publish(event shared.Event) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrEventBusClosed
	}

	data, err := json.Marshal(newEnvelope(b.instanceID, event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = b.breaker.Run(b.ctx, func(ctx context.Context) error {
		return b.client.Publish(ctx, b.channel, string(data))
	})
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		b.logger.Debug("redis publish skipped", "event_type", event.EventType(), "reason", err)
	case err != nil:
		b.logger.Warn("redis publish failed", "event_type", event.EventType(), "error", err)
	}

	return b.local.Publish(event)
}

func (b *RedisBus) receive(messages <-chan RedisMessage) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Err != nil {
				b.logger.Error("redis subscription error", "error", msg.Err)
				continue
			}
			b.deliver(msg)
		}
	}
}

func (b *RedisBus) deliver(msg RedisMessage) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.logger.Error("malformed event envelope", "channel", msg.Channel, "error", err)
		return
	}

	if env.InstanceID == b.instanceID {
		return
	}

	if err := b.local.Publish(env.event()); err != nil {
		b.logger.Error("deliver remote event", "event_id", env.EventID, "error", err)
	}
}

// Close stops the receive loop, closes the local bus and the client.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	if err := b.local.Close(); err != nil {
		b.logger.Error("close local bus", "error", err)
	}
	return b.client.Close()
}

// Stats returns the local bus counters plus breaker skips.
func (b *RedisBus) Stats() BusStatsSnapshot {
	s := b.local.Stats()
	s.RemoteSkipped = b.breaker.Skipped()
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

type envelope struct {
	EventID     string                 `json:"event_id"`
	InstanceID  string                 `json:"instance_id"`
	EventType   shared.EventType       `json:"event_type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

func newEnvelope(instanceID string, e shared.Event) envelope {
	return envelope{
		EventID:     uuid.NewString(),
		InstanceID:  instanceID,
		EventType:   e.EventType(),
		AggregateID: e.AggregateID(),
		OccurredAt:  e.OccurredAt(),
		Payload:     e.Payload(),
	}
}

func (env envelope) event() shared.Event {
	return &remoteEvent{
		eventType:   env.EventType,
		aggregateID: env.AggregateID,
		occurredAt:  env.OccurredAt,
		payload:     env.Payload,
	}
}

// remoteEvent is an event received from another instance. Only the payload
// map survives the trip; typed fields are not reconstructed.
type remoteEvent struct {
	eventType   shared.EventType
	aggregateID string
	occurredAt  time.Time
	payload     map[string]interface{}
}

func (e *remoteEvent) EventType() shared.EventType     { return e.eventType }
func (e *remoteEvent) AggregateID() string             { return e.aggregateID }
func (e *remoteEvent) OccurredAt() time.Time           { return e.occurredAt }
func (e *remoteEvent) Payload() map[string]interface{} { return e.payload }

// ══════════════════════════════════════════════════════════════════════════════
// STATS
// ══════════════════════════════════════════════════════════════════════════════

// BusStats counts publishes and handler runs.
type BusStats struct {
	mu        sync.Mutex
	byType    map[shared.EventType]int64
	runs      int64
	failures  int64
	totalTime time.Duration
}

func newBusStats() *BusStats {
	return &BusStats{byType: make(map[shared.EventType]int64)}
}

func (s *BusStats) published(t shared.EventType) {
	s.mu.Lock()
	s.byType[t]++
	s.mu.Unlock()
}

func (s *BusStats) handled(d time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	s.totalTime += d
	if !ok {
		s.failures++
	}
}

// BusStatsSnapshot is a point-in-time copy of BusStats.
type BusStatsSnapshot struct {
	Published       map[shared.EventType]int64
	HandlerRuns     int64
	HandlerFailures int64
	AverageHandler  time.Duration

	// RemoteSkipped counts events kept local because the publish breaker
	// was open. Always zero for a LocalBus.
	RemoteSkipped int64
}

func (s *BusStats) snapshot() BusStatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	published := make(map[shared.EventType]int64, len(s.byType))
	for k, v := range s.byType {
		published[k] = v
	}

	var avg time.Duration
	if s.runs > 0 {
		avg = s.totalTime / time.Duration(s.runs)
	}

	return BusStatsSnapshot{
		Published:       published,
		HandlerRuns:     s.runs,
		HandlerFailures: s.failures,
		AverageHandler:  avg,
	}
}
