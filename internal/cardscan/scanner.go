// Package cardscan extracts payment card fields from the text blocks an OCR
// engine recognized in a single camera frame.
//
// The card number is located first and its block is used as the anchor for
// the expiry date and cardholder name searches. A FrameScanner holds no
// mutable state and can be shared between goroutines.
package cardscan

// FrameScanner runs the card number, expiry date and cardholder name filters
// over one recognition result at a time
type FrameScanner struct {
	opts Options
}

// NewFrameScanner creates a FrameScanner with a private copy of opts
func NewFrameScanner(opts Options) *FrameScanner {
	return &FrameScanner{opts: opts.withDefaults()}
}

// ScanSingleFrame extracts card details from one frame. It returns false when
// no card number was found; the caller should move on to the next frame.
func (s *FrameScanner) ScanSingleFrame(result RecognitionResult) (CardDetails, bool) {
	cardNumber, ok := FindCardNumber(result, s.opts)
	if !ok || cardNumber.Value == "" {
		s.opts.debugLog("no card number in frame", "blocks", len(result.Blocks))
		return CardDetails{}, false
	}

	details := CardDetails{CardNumber: cardNumber.Value}
	if expiry, ok := FindExpiryDate(result, s.opts, cardNumber); ok {
		details.ExpiryDate = expiry.Value.String()
	}
	if name, ok := FindCardHolderName(result, s.opts, cardNumber); ok {
		details.CardHolderName = name.Value
	}
	return details, true
}
