// Package inspect broadcasts per-frame summaries to connected websocket
// subscribers: an FPS sample and the frame number, nothing about W or H's
// contents. It never blocks the simulation loop on a slow or absent
// subscriber.
package inspect

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gurbano/sandymarton/sim"
)

// FrameSummary is the one JSON message a subscriber receives per frame.
type FrameSummary struct {
	Frame   uint64  `json:"frame"`
	FPS     float64 `json:"fps"`
	AtUnix  int64   `json:"at_unix"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broadcaster fans FrameSummary messages out to every connected subscriber.
// Connections are tracked in a mutex-guarded map; delivery is per-subscriber
// through a bounded channel so one slow reader can never stall the others or
// the caller of Publish.
type Broadcaster struct {
	logger sim.Logger

	mu      sync.RWMutex
	clients map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	out  chan FrameSummary
}

// NewBroadcaster returns a Broadcaster that logs connection lifecycle
// through logger (nil is replaced with a no-op logger).
func NewBroadcaster(logger sim.Logger) *Broadcaster {
	if logger == nil {
		logger = sim.NewNopLogger()
	}
	return &Broadcaster{logger: logger, clients: make(map[*subscriber]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers the connection
// as a subscriber until it disconnects or its write fails.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warnf("inspect: upgrade failed: %v", err)
		return
	}

	sub := &subscriber{conn: conn, out: make(chan FrameSummary, 8)}
	b.mu.Lock()
	b.clients[sub] = struct{}{}
	b.mu.Unlock()

	go b.writePump(sub)
}

func (b *Broadcaster) writePump(sub *subscriber) {
	defer func() {
		b.mu.Lock()
		delete(b.clients, sub)
		b.mu.Unlock()
		sub.conn.Close()
	}()
	for msg := range sub.out {
		sub.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := sub.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// Publish sends one FrameSummary to every connected subscriber without
// blocking: a subscriber whose buffered channel is already full has the
// summary dropped rather than stalling the frame loop.
func (b *Broadcaster) Publish(summary FrameSummary) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.clients {
		select {
		case sub.out <- summary:
		default:
			b.logger.Debugf("inspect: dropping frame summary for slow subscriber")
		}
	}
}

// Close disconnects every subscriber and stops their write pumps.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.clients {
		close(sub.out)
	}
	b.clients = make(map[*subscriber]struct{})
}

// Count reports the number of currently connected subscribers, for tests
// and diagnostics.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
