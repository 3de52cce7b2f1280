package scan

import (
	"strings"
	"time"

	"github.com/zombor/card-scanner/internal/cardscan"
)

// Scan is the stored record of a successful card scan. Only the masked card
// number is kept.
type Scan struct {
	ID             string    `json:"id"`
	MaskedNumber   string    `json:"masked_number"`
	ExpiryDate     string    `json:"expiry_date,omitempty"`
	CardHolderName string    `json:"card_holder_name,omitempty"`
	Source         string    `json:"source"` // content type of the uploaded image, or "frame"
	Filename       string    `json:"filename,omitempty"`
	BlockCount     int       `json:"block_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Result is what a scan request returns. Card holds the unmasked details and
// is never persisted.
type Result struct {
	Scan *Scan                `json:"scan"`
	Card cardscan.CardDetails `json:"card"`
}

// MaskCardNumber keeps the first six and last four digits
func MaskCardNumber(number string) string {
	if len(number) <= 10 {
		return strings.Repeat("*", len(number))
	}
	return number[:6] + strings.Repeat("*", len(number)-10) + number[len(number)-4:]
}
