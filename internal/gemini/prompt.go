package gemini

import (
	"fmt"
	"strings"

	"github.com/wolfman30/dental-ai-assistant/internal/intent"
)

// Generation settings sent with every request.
const (
	Temperature     float32 = 0.3
	TopK            int32   = 20
	TopP            float32 = 0.8
	MaxOutputTokens int32   = 512
)

const promptTemplate = `You are a helpful dental clinic assistant chatbot. Your role is to help users with:
1. Finding patients and dentists
2. Viewing appointments
3. Creating appointments

Context about the system:
%s

User message: %s

Based on the user's message, provide a helpful response. If the user wants to:
- Search for a patient/dentist: Extract the search term
- Make an appointment: Extract patient name/ID, dentist name/ID, and preferred date/time
- List data: Indicate what they want to see

IMPORTANT: Respond ONLY with valid JSON. No markdown, no code blocks, no extra text.

Use this exact format:
{"intent":"search_patient","extracted_data":{"search_term":"John","patient_info":"","dentist_info":"","datetime":""},"response_message":"Looking for patient John"}

Valid intent values: %s

For datetime, use ISO format like: 2025-10-25T14:00:00
If a field is not applicable, use empty string "".

Your JSON response:
`

// BuildPrompt renders the classification prompt for one user message.
func BuildPrompt(userMessage, clinicContext string) string {
	names := make([]string, 0, len(intent.All))
	for _, in := range intent.All {
		names = append(names, in.String())
	}
	return fmt.Sprintf(promptTemplate, clinicContext, userMessage, strings.Join(names, ", "))
}
