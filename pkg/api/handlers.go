package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ssargent/mmqueue/pkg/codec"
	"github.com/ssargent/mmqueue/pkg/queue"
)

// Server handles HTTP requests against a single queue.
type Server struct {
	queue   IQueue
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server instance.
func NewServer(q IQueue, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		queue:   q,
		config:  config,
		metrics: metrics,
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "ok"})
}

// handleEnqueue appends one element to the queue. Short payloads are
// zero-padded to the slot size.
func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req ElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Element) == 0 {
		sendError(w, "Element is required", http.StatusBadRequest)
		return
	}

	payload, err := codec.PadSlot(req.Element, s.queue.SlotSize())
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	err = s.queue.Enqueue(payload)
	duration := time.Since(start)

	switch {
	case errors.Is(err, queue.ErrFull):
		s.metrics.RecordQueueOperation("enqueue", statusFull, duration)
		sendError(w, "Queue is full", http.StatusConflict)
	case err != nil:
		s.metrics.RecordQueueOperation("enqueue", statusError, duration)
		sendError(w, err.Error(), http.StatusInternalServerError)
	default:
		s.metrics.RecordQueueOperation("enqueue", statusSuccess, duration)
		sendSuccess(w, map[string]int64{"size": s.queue.Size()})
	}
}

// handleDequeue removes and returns the oldest element.
func (s *Server) handleDequeue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	data, err := s.queue.Dequeue()
	duration := time.Since(start)

	switch {
	case errors.Is(err, queue.ErrEmpty):
		s.metrics.RecordQueueOperation("dequeue", statusEmpty, duration)
		sendError(w, "Queue is empty", http.StatusNotFound)
	case err != nil:
		s.metrics.RecordQueueOperation("dequeue", statusError, duration)
		sendError(w, err.Error(), http.StatusInternalServerError)
	default:
		s.metrics.RecordQueueOperation("dequeue", statusSuccess, duration)
		sendSuccess(w, ElementResponse{Element: data})
	}
}

// handlePeek returns the oldest element without removing it.
func (s *Server) handlePeek(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	data, err := s.queue.Peek()
	duration := time.Since(start)

	switch {
	case errors.Is(err, queue.ErrEmpty):
		s.metrics.RecordQueueOperation("peek", statusEmpty, duration)
		sendError(w, "Queue is empty", http.StatusNotFound)
	case err != nil:
		s.metrics.RecordQueueOperation("peek", statusError, duration)
		sendError(w, err.Error(), http.StatusInternalServerError)
	default:
		s.metrics.RecordQueueOperation("peek", statusSuccess, duration)
		sendSuccess(w, ElementResponse{Element: data})
	}
}

// handleStats reports the queue's state.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.queue.Stats()
	sendSuccess(w, StatsResponse{
		Size:           stats.Size,
		Capacity:       stats.Capacity,
		SlotSize:       stats.SlotSize,
		SchemaID:       stats.SchemaID,
		IsEmpty:        s.queue.IsEmpty(),
		IsFull:         s.queue.IsFull(),
		BusyIterations: stats.BusyIterations,
	})
}

// startMetricsUpdater periodically refreshes the queue gauges.
func (s *Server) startMetricsUpdater() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := s.queue.Stats()
		s.metrics.UpdateQueueStats(stats.Size, stats.Capacity, stats.BusyIterations)
	}
}
