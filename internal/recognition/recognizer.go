// Package recognition turns card photos into the ordered text blocks the
// card scanner consumes.
package recognition

import "github.com/zombor/card-scanner/internal/cardscan"

// Recognizer defines the interface for OCR providers
type Recognizer interface {
	// Recognize reads the text in an image/PDF and returns it as blocks in
	// reading order
	Recognize(imageData []byte, contentType string) (cardscan.RecognitionResult, error)
	// Close closes the recognizer and releases resources
	Close() error
}
