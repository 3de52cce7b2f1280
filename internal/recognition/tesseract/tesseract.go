// Package tesseract provides an on-device Recognizer backed by the Tesseract
// OCR engine. It needs libtesseract at build and run time.
package tesseract

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/card-scanner/internal/cardscan"
	"github.com/zombor/card-scanner/internal/recognition"
)

// ocrClient is the part of gosseract.Client the recognizer uses
type ocrClient interface {
	SetLanguage(langs ...string) error
	SetImageFromBytes(data []byte) error
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
	Close() error
}

// Tesseract implements recognition.Recognizer with one block per text line
type Tesseract struct {
	languages     []string
	minConfidence float64
	clientFactory func() ocrClient
}

// New creates a Tesseract recognizer. Lines recognized with a confidence
// (0-100) below minConfidence are dropped.
func New(minConfidence float64, languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{
		languages:     languages,
		minConfidence: minConfidence,
		clientFactory: func() ocrClient { return gosseract.NewClient() },
	}
}

// Recognize reads the text lines of a card photo in reading order
func (t *Tesseract) Recognize(imageData []byte, contentType string) (cardscan.RecognitionResult, error) {
	pngData, err := recognition.PrepareImage(imageData, contentType)
	if err != nil {
		return cardscan.RecognitionResult{}, err
	}

	c := t.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(t.languages...); err != nil {
		return cardscan.RecognitionResult{}, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(pngData); err != nil {
		return cardscan.RecognitionResult{}, fmt.Errorf("set image: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return cardscan.RecognitionResult{}, fmt.Errorf("recognize text lines: %w", err)
	}

	return cardscan.NewRecognitionResult(t.lines(boxes)...), nil
}

// lines keeps confident, non-blank lines in reading order
func (t *Tesseract) lines(boxes []gosseract.BoundingBox) []string {
	texts := make([]string, 0, len(boxes))
	for _, b := range boxes {
		if b.Confidence < t.minConfidence {
			continue
		}
		if line := strings.TrimSpace(b.Word); line != "" {
			texts = append(texts, line)
		}
	}
	return texts
}

// Close is a no-op; a client is created per call
func (t *Tesseract) Close() error {
	return nil
}

var _ recognition.Recognizer = (*Tesseract)(nil)
