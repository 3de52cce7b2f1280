package scan

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/card-scanner/internal/cardscan"
	"github.com/zombor/card-scanner/internal/recognition"
)

var (
	// ErrNoCardFound is returned when the frame holds no recognizable card number
	ErrNoCardFound = errors.New("no card found")

	// ErrRecognitionFailed wraps errors from the OCR provider
	ErrRecognitionFailed = errors.New("recognition failed")
)

// SourceFrame marks scans submitted as already recognized text blocks
const SourceFrame = "frame"

// IDGenerator generates unique IDs for scans
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles scan operations
type Service struct {
	db          DB
	recognizer  recognition.Recognizer
	scanner     *cardscan.FrameScanner
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, recognizer recognition.Recognizer, scanner *cardscan.FrameScanner) *Service {
	return NewServiceWithDeps(db, recognizer, scanner, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, recognizer recognition.Recognizer, scanner *cardscan.FrameScanner, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		recognizer:  recognizer,
		scanner:     scanner,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(repeatedSpaces.ReplaceAllString(base, " "))

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "card"
	}
	return base + ext
}

// ScanImage recognizes the text on an uploaded card photo and extracts the card details
func (s *Service) ScanImage(filename string, data []byte, contentType string) (*Result, error) {
	frame, err := s.recognizer.Recognize(data, contentType)
	if err != nil {
		slog.Error("Failed to recognize card image",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrRecognitionFailed, err)
	}

	return s.scanFrame(frame, contentType, sanitizeFilename(filename))
}

// ScanFrame extracts card details from text blocks recognized elsewhere, e.g. on the device
func (s *Service) ScanFrame(frame cardscan.RecognitionResult) (*Result, error) {
	return s.scanFrame(frame, SourceFrame, "")
}

func (s *Service) scanFrame(frame cardscan.RecognitionResult, source, filename string) (*Result, error) {
	details, ok := s.scanner.ScanSingleFrame(frame)
	if !ok {
		slog.Info("No card found in frame", "source", source, "blocks", len(frame.Blocks))
		return nil, ErrNoCardFound
	}

	scan := &Scan{
		ID:             s.idGenerator.Generate(),
		MaskedNumber:   MaskCardNumber(details.CardNumber),
		ExpiryDate:     details.ExpiryDate,
		CardHolderName: details.CardHolderName,
		Source:         source,
		Filename:       filename,
		BlockCount:     len(frame.Blocks),
		CreatedAt:      s.timeSource.Now(),
	}

	if err := s.db.SaveScan(scan); err != nil {
		return nil, fmt.Errorf("saving scan to database: %w", err)
	}

	return &Result{Scan: scan, Card: details}, nil
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

// DeleteScan removes a scan
func (s *Service) DeleteScan(id string) error {
	if err := s.db.DeleteScan(id); err != nil {
		return fmt.Errorf("deleting scan from database: %w", err)
	}
	return nil
}
