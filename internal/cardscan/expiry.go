package cardscan

import (
	"regexp"
	"strconv"
)

// expiryDateRegex matches MM/YY and MM/YYYY with /, -, . or space between
var expiryDateRegex = regexp.MustCompile(`\b(0?[1-9]|1[0-2])[ ]?[/\-. ][ ]?(\d{4}|\d{2})\b`)

const (
	maxBlocksBelowCardNumberToSearchForExpiry = 4
	maxBlocksAboveCardNumberToSearchForExpiry = 1
	maxExpiryYearsAhead                       = 20
)

// FindExpiryDate searches the card number block, then the blocks below it,
// then the block above it for an expiry date
func FindExpiryDate(result RecognitionResult, opts Options, cardNumber FieldResult[string]) (FieldResult[ExpiryDate], bool) {
	if !opts.ScanExpiryDate || cardNumber.Value == "" {
		return FieldResult[ExpiryDate]{}, false
	}

	for _, index := range expirySearchOrder(cardNumber.BlockIndex, len(result.Blocks)) {
		block := result.Blocks[index]
		if date, ok := latestExpiryDate(block.Text, opts); ok {
			return FieldResult[ExpiryDate]{BlockIndex: index, Block: block, Value: date}, true
		}
	}
	return FieldResult[ExpiryDate]{}, false
}

func expirySearchOrder(anchor, blockCount int) []int {
	if anchor < 0 || anchor >= blockCount {
		return nil
	}
	order := []int{anchor}
	for i := anchor + 1; i <= anchor+maxBlocksBelowCardNumberToSearchForExpiry && i < blockCount; i++ {
		order = append(order, i)
	}
	for i := anchor - 1; i >= anchor-maxBlocksAboveCardNumberToSearchForExpiry && i >= 0; i-- {
		order = append(order, i)
	}
	return order
}

// latestExpiryDate picks the latest plausible date in text, so that a
// "valid from" date printed next to "valid thru" loses
func latestExpiryDate(text string, opts Options) (ExpiryDate, bool) {
	var (
		best  ExpiryDate
		found bool
	)
	for _, m := range expiryDateRegex.FindAllStringSubmatch(text, -1) {
		date, ok := parseExpiryDate(m[1], m[2])
		if !ok || !isPlausibleExpiry(date, opts) {
			continue
		}
		if !found || date.after(best) {
			best, found = date, true
		}
	}
	return best, found
}

func parseExpiryDate(month, year string) (ExpiryDate, bool) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return ExpiryDate{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return ExpiryDate{}, false
	}
	if len(year) == 2 {
		y += 2000
	}
	return ExpiryDate{Month: m, Year: y}, true
}

func isPlausibleExpiry(date ExpiryDate, opts Options) bool {
	now := opts.now()
	if date.Year > now.Year()+maxExpiryYearsAhead {
		opts.debugLog("expiry date too far ahead", "expiry", date.String())
		return false
	}
	if !opts.ConsiderPastDatesInExpiryDateScan {
		current := ExpiryDate{Month: int(now.Month()), Year: now.Year()}
		if current.after(date) {
			opts.debugLog("expiry date in the past", "expiry", date.String())
			return false
		}
	}
	if date.Year < 2000 {
		return false
	}
	return true
}
