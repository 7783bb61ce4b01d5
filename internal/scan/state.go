package scan

import "github.com/zombor/invoice-scan/internal/invoice"

// State is the current scan status. Exactly one variant is active at a
// time: Idle, Loading, Success, or Error.
type State interface {
	state()
}

// Idle means no scan has run since startup or the last reset.
type Idle struct{}

// Loading is the transient state set while a candidate batch is being
// classified.
type Loading struct{}

// Success carries the outcome of classifying a decoded candidate: either a
// structured invoice record, or the raw value with its symbology label.
// Never both.
type Success struct {
	Invoice  *invoice.Record
	RawValue string
	Format   string
}

// Error carries a human-readable failure message.
type Error struct {
	Message string
}

func (Idle) state()    {}
func (Loading) state() {}
func (Success) state() {}
func (Error) state()   {}
