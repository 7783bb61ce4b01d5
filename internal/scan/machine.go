package scan

import (
	"fmt"
	"sync"

	"github.com/zombor/invoice-scan/internal/invoice"
	"github.com/zombor/invoice-scan/internal/scanning"
)

// Messages for the two batch-level failure modes.
const (
	msgNoBarcode    = "No barcode detected"
	msgNoUsableText = "No valid barcode value"
)

// Classify turns one decoded candidate's text into a Success state. Text
// that parses as an invoice record yields the structured form; anything
// else falls back to the raw value tagged with the symbology label. A
// failed structured decode is never surfaced: most barcodes are not
// invoices and their payload is still a valid scan result.
func Classify(rawText string, symbology scanning.Symbology) Success {
	record, err := invoice.Decode(rawText)
	if err != nil {
		return Success{RawValue: rawText, Format: symbology.Label()}
	}
	return Success{Invoice: record}
}

// Machine drives the scan state through its four variants. Each batch runs
// to completion (Loading, then a terminal state) before the next call is
// admitted.
type Machine struct {
	mu   sync.Mutex
	cell *Cell
}

// NewMachine creates a machine writing to cell.
func NewMachine(cell *Cell) *Machine {
	return &Machine{cell: cell}
}

// OnDecodeBatch consumes the decode candidates from one analyzed frame.
// An empty batch is an error; otherwise the first candidate with usable
// text decides the terminal state and the rest of the batch is ignored.
// An empty string counts as usable text, only absent text is skipped.
func (m *Machine) OnDecodeBatch(candidates []scanning.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(candidates) == 0 {
		m.cell.Set(Error{Message: msgNoBarcode})
		return
	}

	m.cell.Set(Loading{})

	for _, candidate := range candidates {
		if candidate.RawText == nil {
			continue
		}
		m.cell.Set(m.classify(*candidate.RawText, candidate.Symbology))
		return
	}

	m.cell.Set(Error{Message: msgNoUsableText})
}

// classify wraps Classify, converting runtime faults into an Error state
// instead of unwinding through the caller. Decode failures are not faults,
// they fall back inside Classify; this path exists for whatever a future
// decoder might raise beyond a shape mismatch.
func (m *Machine) classify(rawText string, symbology scanning.Symbology) (st State) {
	defer func() {
		if r := recover(); r != nil {
			st = Error{Message: fmt.Sprintf("classification failed: %v", r)}
		}
	}()
	return Classify(rawText, symbology)
}

// Reset returns the state to Idle. Valid from any state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cell.Set(Idle{})
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	return m.cell.Get()
}
