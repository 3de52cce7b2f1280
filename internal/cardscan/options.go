package cardscan

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// NamePosition is a place, relative to the card number block, where the
// cardholder name may be printed
type NamePosition string

const (
	AboveCardNumber NamePosition = "aboveCardNumber"
	BelowCardNumber NamePosition = "belowCardNumber"
)

// ParseNamePosition converts a configuration value to a NamePosition
func ParseNamePosition(s string) (NamePosition, error) {
	switch p := NamePosition(strings.TrimSpace(s)); p {
	case AboveCardNumber, BelowCardNumber:
		return p, nil
	default:
		return "", fmt.Errorf("unknown cardholder name position %q", s)
	}
}

// defaultBlackListedWords are values printed on most cards that the name
// pattern would otherwise accept. Compared against the lower-cased candidate.
var defaultBlackListedWords = []string{
	"valid from",
	"valid thru",
	"valid through",
	"valid until",
	"expires end",
	"month year",
	"member since",
	"debit",
	"credit",
	"debit card",
	"credit card",
	"prepaid",
	"prepaid card",
	"business",
	"corporate",
	"electronic",
	"electronic use only",
	"international",
	"visa",
	"visa debit",
	"visa electron",
	"mastercard",
	"maestro",
	"mir",
	"unionpay",
	"american express",
	"discover",
	"platinum",
	"gold",
	"classic",
	"standard",
	"signature",
	"infinite",
	"world",
	"world elite",
	"bank",
	"card",
}

const defaultMaxCardHolderNameLength = 26

// Options controls which fields a FrameScanner extracts and how candidates
// are accepted. Build it with DefaultOptions and override fields; a scanner
// copies it on construction so later changes have no effect.
type Options struct {
	ScanExpiryDate     bool
	ScanCardHolderName bool

	// CardHolderNamePositions widens the name search window above and/or
	// below the card number block. Empty means only the card number block.
	CardHolderNamePositions []NamePosition

	// MaxCardHolderNameLength defaults to 26 when zero or negative
	MaxCardHolderNameLength int

	// CardHolderNameBlackListedWords is merged with the built-in blacklist
	CardHolderNameBlackListedWords []string

	// EnableLuhnCheck rejects card number candidates failing the checksum.
	// This is stricter than the structural check: one misread digit drops
	// the frame, and the caller retries on the next one.
	EnableLuhnCheck bool

	// RejectRepeatedDigits rejects candidates made of one repeated digit,
	// a common OCR artefact on embossed placeholder text
	RejectRepeatedDigits bool

	// ConsiderPastDatesInExpiryDateScan accepts expiry dates before the
	// current month
	ConsiderPastDatesInExpiryDateScan bool

	EnableDebugLogs bool

	// Logger receives diagnostic traces when EnableDebugLogs is set
	Logger *slog.Logger

	// Now is the clock used for expiry plausibility
	Now func() time.Time
}

// DefaultOptions returns the options a scanner uses when nothing is overridden
func DefaultOptions() Options {
	return Options{
		ScanExpiryDate:          true,
		ScanCardHolderName:      false,
		CardHolderNamePositions: []NamePosition{BelowCardNumber},
		MaxCardHolderNameLength: defaultMaxCardHolderNameLength,
		EnableLuhnCheck:         true,
		RejectRepeatedDigits:    true,
		Logger:                  slog.Default(),
		Now:                     time.Now,
	}
}

// withDefaults fills the fields whose zero value is unusable
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.MaxCardHolderNameLength = o.maxCardHolderNameLength()
	o.CardHolderNamePositions = slices.Clone(o.CardHolderNamePositions)
	o.CardHolderNameBlackListedWords = slices.Clone(o.CardHolderNameBlackListedWords)
	return o
}

func (o Options) maxCardHolderNameLength() int {
	if o.MaxCardHolderNameLength <= 0 {
		return defaultMaxCardHolderNameLength
	}
	return o.MaxCardHolderNameLength
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) allowsNamePosition(p NamePosition) bool {
	return slices.Contains(o.CardHolderNamePositions, p)
}

// isBlackListed reports whether the lower-cased value is a known non-name
func (o Options) isBlackListed(value string) bool {
	value = strings.ToLower(value)
	if slices.Contains(defaultBlackListedWords, value) {
		return true
	}
	for _, w := range o.CardHolderNameBlackListedWords {
		if strings.ToLower(strings.TrimSpace(w)) == value {
			return true
		}
	}
	return false
}

func (o Options) debugLog(msg string, args ...any) {
	if !o.EnableDebugLogs || o.Logger == nil {
		return
	}
	o.Logger.Debug(msg, append([]any{"component", "card_scanner"}, args...)...)
}
