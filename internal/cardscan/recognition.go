package cardscan

import "fmt"

// TextBlock is one region of recognized text and its reading-order position
type TextBlock struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// RecognitionResult is the OCR output for a single frame, in reading order
type RecognitionResult struct {
	Blocks []TextBlock `json:"blocks"`
}

// NewRecognitionResult builds a result from block texts, numbering them in order
func NewRecognitionResult(texts ...string) RecognitionResult {
	blocks := make([]TextBlock, len(texts))
	for i, t := range texts {
		blocks[i] = TextBlock{Index: i, Text: t}
	}
	return RecognitionResult{Blocks: blocks}
}

// FieldResult is a field value together with the block it was read from
type FieldResult[F any] struct {
	BlockIndex int
	Block      TextBlock
	Value      F
}

// ExpiryDate is a card expiry month and four-digit year
type ExpiryDate struct {
	Month int
	Year  int
}

// String formats the date as MM/YY
func (d ExpiryDate) String() string {
	return fmt.Sprintf("%02d/%02d", d.Month, d.Year%100)
}

func (d ExpiryDate) after(o ExpiryDate) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	return d.Month > o.Month
}

// CardDetails is the outcome of a successful frame scan. CardNumber is always
// set; ExpiryDate (MM/YY) and CardHolderName are empty when not found.
type CardDetails struct {
	CardNumber     string `json:"card_number"`
	ExpiryDate     string `json:"expiry_date"`
	CardHolderName string `json:"card_holder_name"`
}
