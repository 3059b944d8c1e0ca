package products

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"auction-house/internal/logger"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AllProducts is the watch key for subscribers that want every product's events.
var AllProducts = bson.NilObjectID

// Subscriber represents a connection that can receive product events
type Subscriber struct {
	ProductID bson.ObjectID
	Ch        chan ProductEvent
	Done      chan struct{}
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ID          ulid.ULID
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// watchers holds subscribers for a single watch key
type watchers struct {
	mu sync.RWMutex
	m  map[ulid.ULID]ConnInfo
}

// Hub fans product events out to websocket subscribers
type Hub struct {
	mu          sync.RWMutex
	subscribers map[bson.ObjectID]*watchers
	connIndex   map[ulid.ULID]bson.ObjectID
	bufferSize  int
	dropped     uint64
	delivered   uint64
}

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[bson.ObjectID]*watchers),
		connIndex:   make(map[ulid.ULID]bson.ObjectID),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a connection for events on productID, or on every
// product when productID is AllProducts.
func (h *Hub) Subscribe(connULID ulid.ULID, productID bson.ObjectID) (*Subscriber, func()) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("subscribing connection", "conn_id", connULID.String(), "product_id", productID.Hex())
	}

	h.mu.Lock()
	bucket, exists := h.subscribers[productID]
	if !exists {
		bucket = &watchers{
			m: make(map[ulid.ULID]ConnInfo),
		}
		h.subscribers[productID] = bucket
	}
	h.connIndex[connULID] = productID
	h.mu.Unlock()

	sub := &Subscriber{
		ProductID: productID,
		Ch:        make(chan ProductEvent, h.bufferSize),
		Done:      make(chan struct{}),
	}

	bucket.mu.Lock()
	bucket.m[connULID] = ConnInfo{
		ID:          connULID,
		ConnectedAt: time.Now(),
		Subscriber:  sub,
	}
	bucket.mu.Unlock()

	cancel := func() {
		h.Unsubscribe(connULID)
	}
	return sub, cancel
}

// Unsubscribe removes a subscriber from the hub and closes its channels
func (h *Hub) Unsubscribe(connULID ulid.ULID) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unsubscribing connection", "conn_id", connULID.String())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	key, ok := h.connIndex[connULID]
	if !ok {
		return
	}
	delete(h.connIndex, connULID)

	bucket := h.subscribers[key]
	if bucket == nil {
		return
	}

	bucket.mu.Lock()
	connInfo, exists := bucket.m[connULID]
	if exists {
		delete(bucket.m, connULID)
	}
	empty := len(bucket.m) == 0
	bucket.mu.Unlock()

	if exists {
		close(connInfo.Subscriber.Ch)
		close(connInfo.Subscriber.Done)
	}
	if empty {
		delete(h.subscribers, key)
	}
}

// Broadcast delivers ev to watchers of ev.Product.ID and to AllProducts watchers
func (h *Hub) Broadcast(_ context.Context, ev ProductEvent) {
	if ev.Product == nil {
		return
	}

	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("broadcasting event", "product_id", ev.Product.ID.Hex(), "event_type", string(ev.Type))
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, key := range [...]bson.ObjectID{ev.Product.ID, AllProducts} {
		bucket := h.subscribers[key]
		if bucket == nil {
			continue
		}

		bucket.mu.RLock()
		for _, connInfo := range bucket.m {
			sendOrDrop(connInfo.Subscriber.Ch, ev, func() {
				atomic.AddUint64(&h.dropped, 1)
				log.Warn("outbox full, dropping event", "conn_id", connInfo.ID.String(), "product_id", ev.Product.ID.Hex(), "event_type", string(ev.Type))
			}, func() {
				atomic.AddUint64(&h.delivered, 1)
			})
		}
		bucket.mu.RUnlock()
	}
}

// SubscriberCount returns the current number of subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, bucket := range h.subscribers {
		bucket.mu.RLock()
		total += len(bucket.m)
		bucket.mu.RUnlock()
	}
	return total
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan ProductEvent, ev ProductEvent, onDrop, onSent func()) {
	select {
	case ch <- ev:
		onSent()
	default:
		onDrop()
	}
}

// Stats returns counters for observability and tests.
func (h *Hub) Stats() (subscribers int, delivered, dropped uint64) {
	return h.SubscriberCount(), atomic.LoadUint64(&h.delivered), atomic.LoadUint64(&h.dropped)
}
