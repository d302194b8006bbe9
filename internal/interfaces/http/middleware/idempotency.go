package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stocktrack/backend/internal/infrastructure/cache"
	"github.com/stocktrack/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is supplied by clients to make a mutation replayable
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response replayed from the store
	IdempotencyReplayHeader = "Idempotency-Replay"
)

// bodyCaptureWriter records the response body while it is written
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays mutation responses for repeated Idempotency-Keys.
// The first request claims the key and has its response recorded; repeats
// within the TTL get the recorded response back instead of re-executing.
// Requests without the header pass through untouched. Store failures fail
// open: the mutation still runs.
//
// Must run after Authenticate, keys are scoped per tenant.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isMutation(c.Request.Method) {
			c.Next()
			return
		}
		headerKey := c.GetHeader(IdempotencyKeyHeader)
		if headerKey == "" {
			c.Next()
			return
		}
		tenantID, ok := GetTenantID(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("%s:%s:%s:%s", tenantID, c.Request.Method, c.Request.URL.Path, headerKey)

		if replayStored(c, store, key, log) {
			return
		}

		claimed, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			log.Error("idempotency reserve failed", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			// Someone else holds the key: either their response is ready
			// to replay, or their request is still in flight
			if replayStored(c, store, key, log) {
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeConflict,
				"A request with this Idempotency-Key is still in progress",
			))
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError {
			// Server-side failures are retryable, free the key
			if err := store.Release(ctx, key); err != nil {
				log.Error("idempotency release failed", zap.Error(err))
			}
			return
		}

		stored := cache.StoredResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := store.StoreResponse(ctx, key, stored, ttl); err != nil {
			log.Error("idempotency store failed", zap.Error(err))
		}
	}
}

// replayStored writes the recorded response if one exists
func replayStored(c *gin.Context, store cache.IdempotencyStore, key string, log *zap.Logger) bool {
	stored, found, err := store.GetResponse(c.Request.Context(), key)
	if err != nil {
		log.Error("idempotency lookup failed", zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	c.Header(IdempotencyReplayHeader, "true")
	c.Data(stored.Status, stored.ContentType, stored.Body)
	c.Abort()
	return true
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
