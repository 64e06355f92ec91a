package models

import "time"

// ErrorLog is one recorded request failure.
type ErrorLog struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`   // ERROR, WARN
	Source    string    `json:"source"`  // Endpoint or component name
	Kind      string    `json:"kind"`    // Error kind
	Message   string    `json:"message"` // Error message
	Detail    string    `json:"detail"`  // Underlying cause
	Context   string    `json:"context"` // Context information (JSON format)
}
