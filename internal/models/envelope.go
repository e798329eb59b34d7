package models

import "time"

// Envelope is the standardized wrapper used for every API response,
// success and failure alike. Data is present exactly when Success is true.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewEnvelope builds an envelope stamped at construction time, not at
// request time.
func NewEnvelope(success bool, message string, data interface{}) Envelope {
	e := Envelope{
		Success:   success,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if success {
		e.Data = data
	}
	return e
}
