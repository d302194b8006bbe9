package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"VALIDATION_ERROR", http.StatusBadRequest},
		{"DUPLICATE_KEY", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"UNAUTHORIZED", http.StatusUnauthorized},
		{"FORBIDDEN", http.StatusForbidden},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_AVAILABLE_STOCK", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_RESERVED_STOCK", http.StatusUnprocessableEntity},
		{"INVALID_TRANSITION", http.StatusUnprocessableEntity},
		{"MANUAL_RECEIVED_NOT_ALLOWED", http.StatusUnprocessableEntity},
		{"RECEIPT_BEFORE_SEND", http.StatusUnprocessableEntity},
		{"OVER_RECEIPT", http.StatusUnprocessableEntity},
		{"SOMETHING_NOVEL", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	response := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	assert.True(t, response.Success)
	assert.Equal(t, int64(41), response.Meta.Total)
	assert.Equal(t, 3, response.Meta.TotalPages)
}
