package realtime

import (
	"encoding/json"

	"murmur/internal/models"
	"murmur/pkg/logger"
)

// Notifier is what the write-then-notify coordinators see: fire-and-forget
// pushes keyed by recipient identity. An offline recipient is the normal
// case, never an error, so nothing is returned.
type Notifier interface {
	NewMessage(recipient string, msg *models.Message)
	NewNotification(recipient string, n *models.Notification)
}

type envelope struct {
	recipient string
	event     models.Event
}

// Dispatcher fans events out to a recipient's live connections. Coordinators
// enqueue onto a buffered channel and a single goroutine performs the
// registry lookup and push, so coordinators never touch the transport and
// per-recipient delivery order follows enqueue order.
type Dispatcher struct {
	registry *Registry
	events   chan envelope
	shutdown chan struct{}
}

func NewDispatcher(registry *Registry, buffer int) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		events:   make(chan envelope, buffer),
		shutdown: make(chan struct{}),
	}
}

func (d *Dispatcher) Run() {
	for {
		select {
		case <-d.shutdown:
			return
		case env := <-d.events:
			d.dispatch(env)
		}
	}
}

func (d *Dispatcher) Shutdown() {
	select {
	case d.shutdown <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) NewMessage(recipient string, msg *models.Message) {
	d.emit(recipient, models.Event{Name: models.EventNewMessage, Data: msg})
}

func (d *Dispatcher) NewNotification(recipient string, n *models.Notification) {
	d.emit(recipient, models.Event{Name: models.EventNewNotification, Data: n})
}

func (d *Dispatcher) emit(recipient string, event models.Event) {
	select {
	case d.events <- envelope{recipient: recipient, event: event}:
	default:
		// Queue full. The durable store already holds the record, the
		// recipient picks it up on the next fetch.
		logger.Error("Dispatch queue full, dropping %s event for %s", event.Name, recipient)
	}
}

func (d *Dispatcher) dispatch(env envelope) {
	clients := d.registry.Lookup(env.recipient)
	if len(clients) == 0 {
		// Recipient offline, the durable store is the source of truth
		return
	}

	data, err := json.Marshal(env.event)
	if err != nil {
		logger.Error("Error marshaling %s event: %v", env.event.Name, err)
		return
	}

	for _, client := range clients {
		if !client.enqueue(data) {
			logger.Debug("Dropped %s event for %s: send queue full", env.event.Name, env.recipient)
		}
	}
}
