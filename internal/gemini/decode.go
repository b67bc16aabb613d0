package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/dental-ai-assistant/internal/intent"
)

// DecodeEnvelope repairs a model completion into an intent envelope. It strips
// markdown fences, keeps the outermost JSON object, and fills every missing
// extracted_data key with "".
func DecodeEnvelope(completion string) (intent.Envelope, error) {
	text := cleanCompletion(completion)
	if text == "" {
		return intent.Envelope{}, ErrEmptyCompletion
	}

	var loose map[string]any
	if err := json.Unmarshal([]byte(text), &loose); err != nil {
		return intent.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	rawIntent, ok := loose["intent"].(string)
	if !ok {
		return intent.Envelope{}, ErrMissingIntent
	}

	env := intent.Envelope{
		Intent:          intent.Parse(rawIntent),
		ResponseMessage: stringField(loose, "response_message"),
	}
	if extracted, ok := loose["extracted_data"].(map[string]any); ok {
		env.Extracted = intent.ExtractedData{
			SearchTerm:  stringField(extracted, "search_term"),
			PatientInfo: stringField(extracted, "patient_info"),
			DentistInfo: stringField(extracted, "dentist_info"),
			DateTime:    stringField(extracted, "datetime"),
		}
	}
	return env, nil
}

func cleanCompletion(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		text = text[first : last+1]
	}
	return text
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
