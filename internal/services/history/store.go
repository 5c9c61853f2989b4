package history

import (
	"sync"

	"emotion-worker-go/internal/models"
)

// DefaultCapacity is the number of events kept when no capacity is configured.
const DefaultCapacity = 100

// Store is a bounded, concurrency-safe ring of recent detection events.
type Store struct {
	mu       sync.RWMutex
	events   []models.DetectionEvent
	start    int
	count    int
	capacity int
}

// NewStore creates a store holding at most capacity events
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		events:   make([]models.DetectionEvent, capacity),
		capacity: capacity,
	}
}

// Record appends an event, evicting the oldest one when full.
func (s *Store) Record(event models.DetectionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count < s.capacity {
		s.events[(s.start+s.count)%s.capacity] = event
		s.count++
		return
	}
	s.events[s.start] = event
	s.start = (s.start + 1) % s.capacity
}

// Recent returns the last min(n, Len()) events, oldest first.
func (s *Store) Recent(n int) []models.DetectionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.count {
		n = s.count
	}
	if n <= 0 {
		return []models.DetectionEvent{}
	}

	out := make([]models.DetectionEvent, n)
	skip := s.count - n
	for i := 0; i < n; i++ {
		out[i] = s.events[(s.start+skip+i)%s.capacity]
	}
	return out
}

// Len returns the number of stored events
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Capacity returns the configured bound.
func (s *Store) Capacity() int {
	return s.capacity
}

// Reset drops every stored event.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = 0
	s.count = 0
	clear(s.events)
}

// Stats computes counts, percentages and the most common emotion.
// An empty store yields a zero Stats whose Empty() is true.
func (s *Store) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.Stats{
		TotalDetections:    s.count,
		EmotionCounts:      make(map[string]int),
		EmotionPercentages: make(map[string]float64),
	}
	if s.count == 0 {
		return stats
	}

	// labels in order of first occurrence, for the tie-break
	var order []string
	for i := 0; i < s.count; i++ {
		label := s.events[(s.start+i)%s.capacity].Emotion
		if _, seen := stats.EmotionCounts[label]; !seen {
			order = append(order, label)
		}
		stats.EmotionCounts[label]++
	}

	total := float64(s.count)
	best, bestCount := "", 0
	for _, label := range order {
		count := stats.EmotionCounts[label]
		stats.EmotionPercentages[label] = float64(count) / total * 100
		if count > bestCount {
			best, bestCount = label, count
		}
	}
	stats.MostCommon = &best

	return stats
}
