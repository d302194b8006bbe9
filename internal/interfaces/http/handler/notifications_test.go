package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
	"github.com/stocktrack/backend/internal/infrastructure/event"
	"github.com/stocktrack/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationHandler_Stream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	notifier := event.NewTenantNotifier(zap.NewNop())
	handler := NewNotificationHandler(notifier, WithHeartbeat(time.Hour))

	tenantID := uuid.New()
	actorID := uuid.New()

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, tenantID)
		c.Set(middleware.ActorIDKey, actorID)
	})
	handler.RegisterRoutes(engine.Group(""))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/notifications/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.ServeHTTP(w, req)
	}()

	// Wait for the subscription before publishing
	require.Eventually(t, func() bool {
		return notifier.SubscriberCount(tenantID) == 1
	}, time.Second, 5*time.Millisecond)

	evt := shared.NewBaseDomainEvent("stock_changed", "Variant", uuid.New(), tenantID)
	require.NoError(t, notifier.Handle(context.Background(), &evt))

	// The event for another tenant must not reach this stream
	other := shared.NewBaseDomainEvent("stock_changed", "Variant", uuid.New(), uuid.New())
	require.NoError(t, notifier.Handle(context.Background(), &other))

	// Give the stream loop a moment to drain the subscription channel
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not terminate on request cancellation")
	}

	body := w.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: stock_changed")
	assert.Contains(t, body, "id: "+evt.EventID().String())
	assert.NotContains(t, body, other.EventID().String())
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}

func TestNotificationHandler_ConnectionLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	notifier := event.NewTenantNotifier(zap.NewNop())
	handler := NewNotificationHandler(notifier, WithMaxClients(1), WithHeartbeat(time.Hour))

	tenantID := uuid.New()
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, tenantID)
		c.Set(middleware.ActorIDKey, uuid.New())
	})
	handler.RegisterRoutes(engine.Group(""))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/notifications/stream", nil).WithContext(ctx))
	}()

	require.Eventually(t, func() bool {
		return notifier.SubscriberCount(tenantID) == 1
	}, time.Second, 5*time.Millisecond)

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/notifications/stream", nil))
	assert.Equal(t, http.StatusServiceUnavailable, second.Code)

	cancel()
	<-done
}

func TestNotificationHandler_RequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewNotificationHandler(event.NewTenantNotifier(zap.NewNop()))

	engine := gin.New()
	handler.RegisterRoutes(engine.Group(""))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications/stream", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
