package core

import "github.com/google/uuid"

// NewID returns a globally unique identifier used to correlate pipeline
// invocations in logs and channel handoffs.
func NewID() string {
	return uuid.NewString()
}
