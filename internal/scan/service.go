package scan

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zombor/invoice-scan/internal/scanning"
)

// IDGenerator generates unique IDs for scans
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service orchestrates one scanning session: frames come in, candidates go
// through the state machine, and successful scans are persisted.
type Service struct {
	db          DB
	detector    scanning.Detector
	storage     Storage
	machine     *Machine
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, detector scanning.Detector, storage Storage, machine *Machine) *Service {
	return &Service{
		db:          db,
		detector:    detector,
		storage:     storage,
		machine:     machine,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, detector scanning.Detector, storage Storage, machine *Machine, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		detector:    detector,
		storage:     storage,
		machine:     machine,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Remove special characters, keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	// Replace multiple spaces with single space
	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	// Truncate to reasonable length (50 chars for base, plus extension)
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "frame"
	}

	return base + ext
}

// ProcessFrame runs one captured frame through detection and the state
// machine, returning the resulting state. Frames that end on Success are
// kept in storage alongside a history record; everything else is cleaned
// up.
func (s *Service) ProcessFrame(filename string, data []byte, contentType string) (State, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	// Sanitize filename to clean up phone-generated long filenames
	cleanFilename := sanitizeFilename(filename)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving frame: %w", err)
	}

	candidates, err := s.detector.DetectFrame(data, contentType)
	if err != nil {
		slog.Error("Failed to analyze frame",
			"filename", filename,
			"content_type", contentType,
			"frame_size", len(data),
			"error", err,
		)
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("analyzing frame: %w", err)
	}

	s.machine.OnDecodeBatch(candidates)

	state := s.machine.State()
	success, ok := state.(Success)
	if !ok {
		// Nothing worth keeping for batches that end on an error state.
		s.storage.Delete(savedPath)
		return state, nil
	}

	scan := &Scan{
		ID:          id,
		Invoice:     success.Invoice,
		RawValue:    success.RawValue,
		Format:      success.Format,
		Filename:    savedPath,
		ContentType: contentType,
		CreatedAt:   now,
	}

	if err := s.db.SaveScan(scan); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving scan to database: %w", err)
	}

	return state, nil
}

// State returns a snapshot of the current scan state
func (s *Service) State() State {
	return s.machine.State()
}

// Reset returns the scan state to Idle, the "scan again" action
func (s *Service) Reset() {
	s.machine.Reset()
}

// GetScan retrieves a scan by ID
func (s *Service) GetScan(id string) (*Scan, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	return scan, nil
}

// ListScans returns all scans
func (s *Service) ListScans() ([]*Scan, error) {
	scans, err := s.db.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

// DeleteScan removes a scan and its frame
func (s *Service) DeleteScan(id string) error {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return fmt.Errorf("getting scan for deletion: %w", err)
	}

	if err := s.storage.Delete(scan.Filename); err != nil {
		// Log but continue with database deletion
		slog.Warn("Failed to delete frame", "filename", scan.Filename, "error", err)
	}

	if err := s.db.DeleteScan(id); err != nil {
		return fmt.Errorf("deleting scan from database: %w", err)
	}
	return nil
}

// GetScanFrame retrieves the stored frame for a scan
func (s *Service) GetScanFrame(id string) ([]byte, string, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan: %w", err)
	}

	data, err := s.storage.Get(scan.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan frame: %w", err)
	}

	return data, scan.ContentType, nil
}
