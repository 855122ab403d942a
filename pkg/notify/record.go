// Package notify fans relay progress records out to external observers.
// Delivery is best effort and never blocks the producer.
package notify

import (
	"time"
)

// Type is the progress stage a record reports
type Type string

const (
	TypeObserved  Type = "observed"
	TypeSubmitted Type = "submitted"
	TypeConfirmed Type = "confirmed"
	TypeFailed    Type = "failed"
)

// Record is one progress notification
type Record struct {
	Type      Type      `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail"`
}

// Emitter accepts records without blocking
type Emitter interface {
	Emit(r Record)
}

// Nop discards every record
type Nop struct{}

func (Nop) Emit(Record) {}
