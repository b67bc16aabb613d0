// Package intent defines the classified user intents shared by the chatbot
// and the generative-language client.
package intent

import "strings"

// Intent names a user goal the chatbot can act on.
type Intent string

const (
	SearchPatient    Intent = "search_patient"
	SearchDentist    Intent = "search_dentist"
	ListPatients     Intent = "list_patients"
	ListDentists     Intent = "list_dentists"
	ListAppointments Intent = "list_appointments"
	MakeAppointment  Intent = "make_appointment"
	Help             Intent = "help"
	Unknown          Intent = "unknown"
)

// All lists every intent in the order the prompt advertises them.
var All = []Intent{
	SearchPatient,
	SearchDentist,
	ListPatients,
	ListDentists,
	ListAppointments,
	MakeAppointment,
	Help,
	Unknown,
}

// Parse maps a raw intent string onto the enum. Anything unrecognised is Unknown.
func Parse(raw string) Intent {
	candidate := Intent(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range All {
		if candidate == known {
			return known
		}
	}
	return Unknown
}

func (i Intent) String() string { return string(i) }

// ExtractedData holds the free-text slots pulled out of a message.
type ExtractedData struct {
	SearchTerm  string `json:"search_term"`
	PatientInfo string `json:"patient_info"`
	DentistInfo string `json:"dentist_info"`
	DateTime    string `json:"datetime"`
}

// Envelope is a classified message: the intent, its slots, and an optional
// reply the model suggested.
type Envelope struct {
	Intent          Intent        `json:"intent"`
	Extracted       ExtractedData `json:"extracted_data"`
	ResponseMessage string        `json:"response_message"`
}

// HasBookingDetails reports whether patient, dentist and time were all extracted.
func (e Envelope) HasBookingDetails() bool {
	return e.Extracted.PatientInfo != "" && e.Extracted.DentistInfo != "" && e.Extracted.DateTime != ""
}
