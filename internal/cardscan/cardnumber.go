package cardscan

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// cardNumberRegex matches 4-4-4-(1..4)[-(1..4)] and 4-6-(4..5) digit groupings
// with an optional single space or dash between groups. The fifth group covers
// 17-19 digit numbers printed as 4-4-4-4-(1..3).
var cardNumberRegex = regexp.MustCompile(
	`\b(?:\d{4}(?:[ -]?\d{4}){2}(?:[ -]?\d{1,4}){1,2}|\d{4}[ -]?\d{6}[ -]?\d{4,5})\b`,
)

const maxCardNumberGroups = 5

const (
	minCardNumberLength = 13
	maxCardNumberLength = 19
)

// FindCardNumber returns the first block containing a structurally valid card
// number. The value holds the digits only.
func FindCardNumber(result RecognitionResult, opts Options) (FieldResult[string], bool) {
	for i, block := range result.Blocks {
		text := width.Narrow.String(block.Text)
		for _, loc := range cardNumberRegex.FindAllStringIndex(text, -1) {
			candidate := text[loc[0]:loc[1]]
			if loc[1] < len(text) && strings.IndexByte("/.-", text[loc[1]]) >= 0 {
				candidate = dropDateGroup(candidate)
			}
			digits := stripSeparators(candidate)
			if !isValidCardNumber(digits, opts) {
				continue
			}
			return FieldResult[string]{BlockIndex: i, Block: block, Value: digits}, true
		}
	}
	return FieldResult[string]{}, false
}

func isValidCardNumber(digits string, opts Options) bool {
	if len(digits) < minCardNumberLength || len(digits) > maxCardNumberLength {
		opts.debugLog("card number length out of range", "length", len(digits))
		return false
	}
	if opts.RejectRepeatedDigits && strings.Count(digits, digits[:1]) == len(digits) {
		opts.debugLog("card number is a single repeated digit", "digit", digits[:1])
		return false
	}
	if opts.EnableLuhnCheck && !luhnValid(digits) {
		opts.debugLog("card number failed luhn check", "length", len(digits))
		return false
	}
	return true
}

// dropDateGroup removes a fifth group that is really the month of an expiry
// date printed on the same line, as in "4111 1111 1111 1111 12/28"
func dropDateGroup(candidate string) string {
	groups := strings.FieldsFunc(candidate, isSeparator)
	if len(groups) < maxCardNumberGroups {
		return candidate
	}
	return strings.TrimRightFunc(strings.TrimSuffix(candidate, groups[len(groups)-1]), isSeparator)
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '-'
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}
		return r
	}, s)
}

// luhnValid expects a string of ASCII digits
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
