// internal/model/response.go
package model

import "time"

// TimestampLayout is the envelope timestamp format
const TimestampLayout = "2006-01-02 15:04:05"

// Response is the envelope returned by every handler operation
type Response struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewResponse builds an envelope stamped with the current local time
func NewResponse(success bool, message string, data map[string]interface{}) Response {
	return Response{
		Success:   success,
		Message:   message,
		Timestamp: time.Now().Format(TimestampLayout),
		Data:      data,
	}
}

// Success builds a successful envelope
func Success(message string, data map[string]interface{}) Response {
	return NewResponse(true, message, data)
}

// Failure builds a failed envelope without data
func Failure(message string) Response {
	return NewResponse(false, message, nil)
}
