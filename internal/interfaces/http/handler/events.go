package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/infrastructure/broadcast"
)

// defaultHeartbeat keeps idle SSE connections from being reaped by proxies
const defaultHeartbeat = 30 * time.Second

// EventsHandler streams sync status events to clients over Server-Sent
// Events. Each connection gets its own broadcaster subscription; events
// published while no one listens are simply gone.
type EventsHandler struct {
	BaseHandler
	events    *broadcast.Broadcaster
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(events *broadcast.Broadcaster, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		events:    events,
		logger:    logger,
		heartbeat: defaultHeartbeat,
	}
}

// RegisterRoutes registers the event stream route
func (h *EventsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events", h.Stream)
}

// Stream subscribes the client to sync status events until it disconnects
func (h *EventsHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	events, cancel := h.events.Subscribe()
	defer cancel()

	h.logger.Debug("status event subscriber connected",
		zap.Int("subscribers", h.events.SubscriberCount()),
	)

	// Send initial connection event so the client sees the stream
	// immediately instead of waiting for the first heartbeat
	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("status event subscriber disconnected")
			return
		case <-ticker.C:
			fmt.Fprintf(c.Writer, "event: heartbeat\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			c.Writer.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			h.writeEvent(c.Writer, event)
			c.Writer.Flush()
		}
	}
}

// writeEvent writes one status event in SSE wire format
func (h *EventsHandler) writeEvent(w io.Writer, event broadcast.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal status event", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
}
