// Package sse implements a Server-Sent Events broker for card change
// notifications.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the broker.
const (
	CardCreated  = "card.created"
	CardUpdated  = "card.updated"
	CardDeleted  = "card.deleted"
	VaultUpdated = "vault.updated"
)

// Event represents an SSE event to broadcast. An empty ID is filled with a
// random UUID.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

type cardEventReq struct {
	kind string
	path string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop owns the client set and the vault.updated throttle
// timestamp. Public methods talk to it over channels.
type Broker struct {
	vaultMin  time.Duration
	heartbeat time.Duration
	retry     time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	cardEventCh   chan cardEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithHeartbeat sets how often idle streams receive a ": ping" comment.
// Zero disables heartbeats.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// WithRetry sets the reconnect delay advertised to clients on connect.
func WithRetry(d time.Duration) Option {
	return func(b *Broker) { b.retry = d }
}

// NewBroker creates a broker that emits vault.updated at most once per
// vaultThrottle.
func NewBroker(vaultThrottle time.Duration, opts ...Option) *Broker {
	if vaultThrottle <= 0 {
		vaultThrottle = 2 * time.Second
	}

	b := &Broker{
		vaultMin:      vaultThrottle,
		heartbeat:     15 * time.Second,
		retry:         3 * time.Second,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		cardEventCh:   make(chan cardEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

// format renders one SSE frame.
func format(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	return []byte(fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n", id, event.Type, payload)), nil
}

func cardEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return CardCreated, true
	case "updated":
		return CardUpdated, true
	case "deleted":
		return CardDeleted, true
	}
	return "", false
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastVault time.Time

	broadcast := func(event Event) {
		raw, err := format(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// slow client; drop rather than block the loop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.cardEventCh:
			typ, ok := cardEventType(req.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"path": req.path}})

			now := time.Now()
			if now.Sub(lastVault) >= b.vaultMin {
				lastVault = now
				broadcast(Event{Type: VaultUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishCardEvent publishes card.<kind> for path followed by a throttled
// vault.updated. kind is one of "created", "updated" or "deleted"; other
// kinds are ignored.
func (b *Broker) PublishCardEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.cardEventCh <- cardEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if b.retry > 0 {
		_, _ = fmt.Fprintf(w, "retry: %d\n\n", b.retry.Milliseconds())
	}
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		tick = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
