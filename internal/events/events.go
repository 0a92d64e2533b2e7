package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"clinic/config"
	"clinic/internal/database"
	"clinic/internal/logger"

	"github.com/valkey-io/valkey-go"
)

// AllChannels subscribes to every channel.
const AllChannels = "*"

const (
	channelPrefix     = "clinic:events:"
	subscriberBacklog = 64
)

type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type subscriber struct {
	channel string
	events  chan Event
}

// EventBus fans events out to in-process subscribers. With a cache client the
// events travel through valkey pub/sub so every server instance sees them.
type EventBus struct {
	client database.CacheClient
	config config.Config
	log    logger.Logger

	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	closed      bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(client database.CacheClient, config config.Config) *EventBus {
	bus := &EventBus{
		client:      client,
		config:      config,
		log:         logger.New("events"),
		subscribers: make(map[int]subscriber),
		done:        make(chan struct{}),
	}

	if client == nil {
		close(bus.done)
		return bus
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus.cancel = cancel
	go bus.receive(ctx)

	return bus
}

func (b *EventBus) Publish(channel string, event Event) error {
	log := b.log.Function("Publish")

	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return log.Error("event bus is closed", "channel", channel)
	}

	event.Channel = channel
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if b.client == nil {
		b.deliver(event)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "channel", channel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := b.client.B().Publish().Channel(channelPrefix + channel).Message(string(payload)).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return log.Err("failed to publish event", err, "channel", channel)
	}

	return nil
}

// Subscribe returns a stream of events on channel and a function that ends
// the subscription. Slow subscribers miss events rather than block publishers.
func (b *EventBus) Subscribe(channel string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := make(chan Event, subscriberBacklog)
	if b.closed {
		close(events)
		return events, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = subscriber{channel: channel, events: events}

	var once sync.Once
	return events, func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *EventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	<-b.done

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.events)
		delete(b.subscribers, id)
	}

	return nil
}

func (b *EventBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.events)
		delete(b.subscribers, id)
	}
}

func (b *EventBus) deliver(event Event) {
	log := b.log.Function("deliver")

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if sub.channel != AllChannels && sub.channel != event.Channel {
			continue
		}

		select {
		case sub.events <- event:
		default:
			log.Warn("subscriber backlog full, dropping event", "channel", event.Channel, "eventID", event.ID)
		}
	}
}

func (b *EventBus) receive(ctx context.Context) {
	log := b.log.Function("receive")
	defer close(b.done)

	cmd := b.client.B().Psubscribe().Pattern(channelPrefix + "*").Build()
	err := b.client.Receive(ctx, cmd, func(msg valkey.PubSubMessage) {
		var event Event
		if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
			log.Er("failed to decode event", err, "channel", msg.Channel)
			return
		}
		event.Channel = strings.TrimPrefix(msg.Channel, channelPrefix)
		b.deliver(event)
	})
	if err != nil && ctx.Err() == nil {
		log.Er("event subscription ended", err)
	}
}
