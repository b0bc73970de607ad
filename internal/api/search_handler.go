package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vnykmshr/papertrail/internal/platform/logger"
	"github.com/vnykmshr/papertrail/internal/search"
	"github.com/vnykmshr/papertrail/pkg/metrics"
)

const searchEndpoint = "/search"

// SearchHandler serves the streaming search endpoint over server-sent
// events. Each result is written as a "message" event carrying the tagged
// JSON payload; a final "finish" event marks the end of the stream.
type SearchHandler struct {
	service  *search.Service
	registry *metrics.Registry
}

// NewSearchHandler creates a SearchHandler. Panics if service is nil; a
// nil registry falls back to the process-wide one.
func NewSearchHandler(service *search.Service, registry *metrics.Registry) *SearchHandler {
	if service == nil {
		panic("api: service cannot be nil")
	}
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	return &SearchHandler{service: service, registry: registry}
}

// ServeSearch handles GET /search?query=...
func (h *SearchHandler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("query")

	it, err := h.service.Stream(ctx, query)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			http.Error(w, "query parameter is required", http.StatusBadRequest)
			return
		}
		log.Error("failed to start search stream", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = it.Close() }()

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support streaming")
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.registry.SSEStreamsOpen.WithLabelValues(searchEndpoint).Inc()
	defer h.registry.SSEStreamsOpen.WithLabelValues(searchEndpoint).Dec()

	for {
		msg, ok, err := it.Next(ctx)
		if err != nil {
			// The consumer walked away or the stream broke; either way
			// there is nobody left to write to.
			log.Debug("search stream interrupted", "error", err)
			return
		}
		if !ok {
			break
		}

		data, err := json.Marshal(msg)
		if err != nil {
			log.Error("failed to encode stream message",
				"type", msg.MessageType(), "error", err)
			continue
		}

		if err := writeEvent(w, "message", data); err != nil {
			log.Debug("client disconnected mid-stream", "error", err)
			return
		}
		flusher.Flush()
		h.registry.SSEEventsSent.WithLabelValues("message").Inc()
	}

	if err := writeEvent(w, "finish", nil); err != nil {
		return
	}
	flusher.Flush()
	h.registry.SSEEventsSent.WithLabelValues("finish").Inc()
}

// writeEvent writes a single SSE frame.
func writeEvent(w http.ResponseWriter, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
