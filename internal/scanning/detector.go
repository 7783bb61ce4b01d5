package scanning

// Detector defines the interface for barcode detection over captured frames
type Detector interface {
	// DetectFrame analyzes one frame and returns every decode candidate
	// found in it. A frame with no recognizable codes yields an empty
	// batch, not an error.
	DetectFrame(frameData []byte, contentType string) ([]Candidate, error)
	// Close closes the detector and releases resources
	Close() error
}
