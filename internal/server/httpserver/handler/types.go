package handler

import (
	"time"

	"github.com/yndnr/omfamily/internal/telemetry/metric"
)

// Response is the JSON envelope of every non-metrics endpoint.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// FamiliesResponse is the payload of GET /families.
type FamiliesResponse struct {
	Families []metric.FamilyInfo `json:"families"`
}
