package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-ai-assistant/internal/intent"
)

func TestDecodeEnvelopeFillsMissingKeys(t *testing.T) {
	env, err := DecodeEnvelope(`{"intent":"search_patient","extracted_data":{"search_term":"Jones"}}`)
	require.NoError(t, err)
	assert.Equal(t, intent.Envelope{
		Intent:    intent.SearchPatient,
		Extracted: intent.ExtractedData{SearchTerm: "Jones"},
	}, env)
}

func TestDecodeEnvelopeRepairs(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		want       intent.Intent
	}{
		{"json fence", "```json\n{\"intent\":\"help\"}\n```", intent.Help},
		{"bare fence", "```{\"intent\":\"list_patients\"}```", intent.ListPatients},
		{"surrounding prose", `Sure! {"intent":"list_dentists","extracted_data":{}} hope that helps`, intent.ListDentists},
		{"unknown intent name", `{"intent":"reschedule"}`, intent.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope(tt.completion)
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.Intent)
		})
	}
}

func TestDecodeEnvelopeNonStringFields(t *testing.T) {
	env, err := DecodeEnvelope(`{"intent":"make_appointment","extracted_data":{"patient_info":42,"dentist_info":"Smith"},"response_message":null}`)
	require.NoError(t, err)
	assert.Equal(t, "", env.Extracted.PatientInfo)
	assert.Equal(t, "Smith", env.Extracted.DentistInfo)
	assert.Equal(t, "", env.ResponseMessage)
}

func TestDecodeEnvelopeFailures(t *testing.T) {
	_, err := DecodeEnvelope("   ")
	assert.ErrorIs(t, err, ErrEmptyCompletion)

	_, err = DecodeEnvelope("not json at all")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = DecodeEnvelope(`{"extracted_data":{}}`)
	assert.ErrorIs(t, err, ErrMissingIntent)

	_, err = DecodeEnvelope(`{"intent":7}`)
	assert.ErrorIs(t, err, ErrMissingIntent)
}
