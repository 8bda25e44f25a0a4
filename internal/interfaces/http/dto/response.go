package dto

import (
	"encoding/json"
	"time"
)

// Response is the envelope every endpoint returns. ServerTime doubles as
// the sync watermark for clients that page collections.
type Response struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
	ServerTime time.Time   `json:"server_time"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}, requestID string) Response {
	return Response{
		Success:    true,
		Data:       data,
		RequestID:  requestID,
		ServerTime: time.Now().UTC(),
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(kind, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Kind:    kind,
			Message: message,
		},
		RequestID:  requestID,
		ServerTime: time.Now().UTC(),
	}
}

// MutationResult wraps a deduplicated mutation's payload. Replayed marks
// a response served from the idempotency snapshot rather than a fresh
// execution.
type MutationResult struct {
	RequestID string          `json:"request_id"`
	Replayed  bool            `json:"replayed"`
	Result    json.RawMessage `json:"result"`
}

// Pagination echoes the page window of a collection response.
type Pagination struct {
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}
