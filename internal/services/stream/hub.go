package stream

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"emotion-worker-go/internal/metrics"
)

// DefaultBuffer is the per-viewer chunk buffer used when none is configured.
const DefaultBuffer = 5

// ErrNotLive is returned by Subscribe while no pipeline run is producing chunks.
var ErrNotLive = errors.New("stream is not live")

// Subscriber is one connected viewer of the video feed.
type Subscriber struct {
	ID string
	C  <-chan []byte

	ch      chan []byte
	sent    atomic.Uint64
	dropped atomic.Uint64
}

// SubscriberStats reports delivery counters for a viewer
type SubscriberStats struct {
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

// HubStats is a snapshot of the hub
type HubStats struct {
	Live        bool                       `json:"live"`
	Viewers     int                        `json:"viewers"`
	Published   uint64                     `json:"published"`
	Subscribers map[string]SubscriberStats `json:"subscribers"`
}

// Hub fans the chunks of the single active pipeline out to every viewer.
// Publish never blocks: a viewer whose buffer is full misses that chunk.
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]*Subscriber
	live      bool
	buffer    int
	published atomic.Uint64
}

// NewHub creates an idle hub with the given per-viewer buffer
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]*Subscriber),
		buffer: buffer,
	}
}

// Open marks the stream live so viewers can subscribe.
func (h *Hub) Open() {
	h.mu.Lock()
	h.live = true
	h.mu.Unlock()
}

// Live reports whether a run is currently feeding the hub.
func (h *Hub) Live() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.live
}

// Subscribe registers a new viewer.
func (h *Hub) Subscribe() (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.live {
		return nil, ErrNotLive
	}

	ch := make(chan []byte, h.buffer)
	sub := &Subscriber{
		ID: uuid.NewString(),
		C:  ch,
		ch: ch,
	}
	h.subs[sub.ID] = sub
	metrics.StreamViewers.Set(float64(len(h.subs)))

	log.Debug().Str("viewer_id", sub.ID).Int("viewers", len(h.subs)).Msg("Viewer subscribed")
	return sub, nil
}

// Unsubscribe removes a viewer and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
	metrics.StreamViewers.Set(float64(len(h.subs)))

	log.Debug().Str("viewer_id", id).Int("viewers", len(h.subs)).Msg("Viewer unsubscribed")
}

// Publish hands the chunk to every viewer without waiting on any of them.
func (h *Hub) Publish(chunk []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.live {
		return
	}
	h.published.Add(1)

	for _, sub := range h.subs {
		select {
		case sub.ch <- chunk:
			sub.sent.Add(1)
		default:
			sub.dropped.Add(1)
			metrics.FramesDropped.WithLabelValues("viewer").Inc()
		}
	}
}

// EndStream closes every viewer channel and refuses new viewers until the next Open.
// Chunks already buffered are still delivered before the viewer sees the close.
func (h *Hub) EndStream() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.live = false
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	metrics.StreamViewers.Set(0)
}

// Viewers returns the number of connected viewers
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns a snapshot of delivery counters.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := HubStats{
		Live:        h.live,
		Viewers:     len(h.subs),
		Published:   h.published.Load(),
		Subscribers: make(map[string]SubscriberStats, len(h.subs)),
	}
	for id, sub := range h.subs {
		stats.Subscribers[id] = SubscriberStats{
			Sent:    sub.sent.Load(),
			Dropped: sub.dropped.Load(),
		}
	}
	return stats
}

// StreamHTTP writes the live multipart feed to w until the client goes away or
// the pipeline stops. When the hub is not live the response ends with an empty body.
func (h *Hub) StreamHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := h.Subscribe()
	if err != nil {
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		return
	}
	defer h.Unsubscribe(sub.ID)

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-sub.C:
			if !ok {
				return
			}
			if _, err := w.Write(chunk); err != nil {
				log.Debug().Err(err).Str("viewer_id", sub.ID).Msg("Viewer write failed, dropping")
				return
			}
			flusher.Flush()
		}
	}
}
