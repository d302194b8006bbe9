package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stocktrack/backend/internal/infrastructure/event"
	"github.com/stocktrack/backend/internal/infrastructure/logger"
	"github.com/stocktrack/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// NotificationHandler streams tenant-scoped domain events over SSE
type NotificationHandler struct {
	BaseHandler
	notifier   *event.TenantNotifier
	heartbeat  time.Duration
	maxClients int
	sem        chan struct{}
}

// NotificationOption configures the handler
type NotificationOption func(*NotificationHandler)

// WithHeartbeat sets the keep-alive interval
func WithHeartbeat(interval time.Duration) NotificationOption {
	return func(h *NotificationHandler) {
		h.heartbeat = interval
	}
}

// WithMaxClients caps concurrent SSE connections
func WithMaxClients(max int) NotificationOption {
	return func(h *NotificationHandler) {
		h.maxClients = max
	}
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifier *event.TenantNotifier, opts ...NotificationOption) *NotificationHandler {
	h := &NotificationHandler{
		notifier:   notifier,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.sem = make(chan struct{}, h.maxClients)
	return h
}

// Stream establishes a Server-Sent Events connection carrying the caller's
// tenant events. Delivery is best effort: slow consumers lose events.
// GET /notifications/stream
func (h *NotificationHandler) Stream(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeConflict, "Maximum number of stream connections reached")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	notifications, cancel := h.notifier.Subscribe(tenantID)
	defer cancel()

	log := logger.GetGinLogger(c)
	log.Info("notification stream opened", zap.String("tenant_id", tenantID.String()))

	writeSSE(c.Writer, "connected", fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()), "")
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			log.Info("notification stream closed", zap.String("tenant_id", tenantID.String()))
			return
		case <-ticker.C:
			writeSSE(c.Writer, "heartbeat", fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()), "")
			c.Writer.Flush()
		case notification, open := <-notifications:
			if !open {
				return
			}
			data, err := json.Marshal(notification)
			if err != nil {
				log.Error("failed to marshal notification", zap.Error(err))
				continue
			}
			writeSSE(c.Writer, notification.EventType, string(data), notification.EventID)
			c.Writer.Flush()
		}
	}
}

// writeSSE writes one event in SSE wire format
func writeSSE(w io.Writer, eventName, data, id string) {
	if eventName != "" {
		fmt.Fprintf(w, "event: %s\n", eventName)
	}
	if id != "" {
		fmt.Fprintf(w, "id: %s\n", id)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// RegisterRoutes registers the notification routes
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications/stream", h.Stream)
}
