package scan

import (
	"time"

	"github.com/zombor/invoice-scan/internal/invoice"
)

// Scan is one persisted successful scan. Exactly one of Invoice or
// RawValue/Format is populated, mirroring the Success state it came from.
type Scan struct {
	ID          string          `json:"id"`
	Invoice     *invoice.Record `json:"invoice,omitempty"`
	RawValue    string          `json:"raw_value,omitempty"`
	Format      string          `json:"format,omitempty"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	CreatedAt   time.Time       `json:"created_at"`
}
