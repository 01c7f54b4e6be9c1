package models

import "time"

// APIResponse is the envelope for every JSON response
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// OK wraps data in a successful response
func OK(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Fail builds a failed response from any error
func Fail(err error) APIResponse {
	return *NewAppError(err).ToHTTPError()
}
