package recognition

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zombor/card-scanner/internal/cardscan"
)

// recognitionPrompt is the shared prompt used by the vision model providers
const recognitionPrompt = `You are an OCR engine reading a photo of a payment card. Transcribe every piece of printed or embossed text exactly as it appears, including the card number, dates, names, captions and bank names.

Return ONLY valid JSON in this exact format:
{
  "blocks": ["first line of text", "second line of text"]
}

Important:
- List one entry per line of text, in reading order (top to bottom, left to right)
- Keep the original spacing inside the card number
- Do not correct, translate or interpret the text
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// blockEntry accepts either a plain string or an object with a text field
type blockEntry struct {
	Text string
}

func (b *blockEntry) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.Text); err == nil {
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("block is neither a string nor an object: %w", err)
	}
	b.Text = obj.Text
	return nil
}

// parseBlocksJSON parses a model response into a recognition result
func parseBlocksJSON(text string) (cardscan.RecognitionResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return cardscan.RecognitionResult{}, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return cardscan.RecognitionResult{}, fmt.Errorf("invalid JSON object in response")
	}

	var data struct {
		Blocks []blockEntry `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), &data); err != nil {
		return cardscan.RecognitionResult{}, fmt.Errorf("unmarshaling json: %w", err)
	}

	texts := make([]string, 0, len(data.Blocks))
	for _, b := range data.Blocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return cardscan.NewRecognitionResult(texts...), nil
}
