package cardscan

import (
	"regexp"
	"strings"
)

// cardHolderNameRegex matches a line made only of capitalized alphabetic tokens
var cardHolderNameRegex = regexp.MustCompile(`(?m)^[ \t]*[A-Z][A-Za-z'.\-]*(?:[ \t]+[A-Z][A-Za-z'.\-]*)*[ \t\r]*$`)

const (
	maxBlocksBelowCardNumberToSearchForName = 4
	minCardHolderNameLength                 = 3
)

var captionFragments = []string{"valid from", "valid thru"}

// confusableCaseReplacer upper-cases letters OCR often reads in lower case
// on embossed capitals
var confusableCaseReplacer = strings.NewReplacer(
	"c", "C",
	"o", "O",
	"p", "P",
	"v", "V",
	"w", "W",
)

// NormalizeConfusableCase maps c, o, p, v and w to their capitals
func NormalizeConfusableCase(text string) string {
	return confusableCaseReplacer.Replace(text)
}

// FindCardHolderName searches the blocks around the card number permitted by
// CardHolderNamePositions for the first acceptable name
func FindCardHolderName(result RecognitionResult, opts Options, cardNumber FieldResult[string]) (FieldResult[string], bool) {
	if !opts.ScanCardHolderName || cardNumber.Value == "" {
		return FieldResult[string]{}, false
	}

	minIndex, maxIndex := nameSearchWindow(cardNumber.BlockIndex, len(result.Blocks), opts)
	for index := minIndex; index <= maxIndex; index++ {
		block := result.Blocks[index]
		match := cardHolderNameRegex.FindString(NormalizeConfusableCase(block.Text))
		if match == "" {
			continue
		}
		name := strings.TrimSpace(match)
		if isValidName(name, opts) {
			return FieldResult[string]{BlockIndex: index, Block: block, Value: name}, true
		}
	}
	return FieldResult[string]{}, false
}

// nameSearchWindow returns the inclusive block range to search. The range is
// empty (min > max) when there are no blocks.
func nameSearchWindow(anchor, blockCount int, opts Options) (int, int) {
	minIndex := anchor
	if opts.allowsNamePosition(AboveCardNumber) {
		minIndex--
	}
	maxIndex := anchor
	if opts.allowsNamePosition(BelowCardNumber) {
		maxIndex += maxBlocksBelowCardNumberToSearchForName
	}
	return max(minIndex, 0), min(maxIndex, blockCount-1)
}

func isValidName(name string, opts Options) bool {
	if len(name) < minCardHolderNameLength || len(name) > opts.maxCardHolderNameLength() {
		opts.debugLog("cardholder name length rejected",
			"length", len(name),
			"max_card_holder_name_length", opts.maxCardHolderNameLength(),
		)
		return false
	}
	for _, caption := range captionFragments {
		if strings.HasPrefix(name, caption) || strings.HasSuffix(name, caption) {
			opts.debugLog("cardholder name is a caption", "caption", caption)
			return false
		}
	}
	if opts.isBlackListed(name) {
		opts.debugLog("cardholder name is blacklisted", "name", name)
		return false
	}
	return true
}
