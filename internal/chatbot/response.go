package chatbot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wolfman30/dental-ai-assistant/internal/directory"
)

// ResponseType tags the payload carried in Response.Data.
type ResponseType string

const (
	TypeText                  ResponseType = "text"
	TypePatientList           ResponseType = "patient_list"
	TypeDentistList           ResponseType = "dentist_list"
	TypeAppointmentList       ResponseType = "appointment_list"
	TypeAppointmentCreated    ResponseType = "appointment_created"
	TypeAppointmentSuggestion ResponseType = "appointment_suggestion"
)

// Payload is the closed set of response data shapes. The concrete type
// determines the response type.
type Payload interface {
	responseType() ResponseType
}

// Response is what the chatbot returns for every message.
type Response struct {
	Message     string
	Data        Payload
	Suggestions []string
}

// Type returns the tag matching Data; a response without data is plain text.
func (r *Response) Type() ResponseType {
	if r == nil || r.Data == nil {
		return TypeText
	}
	return r.Data.responseType()
}

func textResponse(message string, suggestions ...string) *Response {
	return dataResponse(message, nil, suggestions...)
}

func dataResponse(message string, data Payload, suggestions ...string) *Response {
	return &Response{
		Message:     message,
		Data:        data,
		Suggestions: append([]string{}, suggestions...),
	}
}

type wireResponse struct {
	Message     string          `json:"message"`
	Type        ResponseType    `json:"type"`
	Data        json.RawMessage `json:"data"`
	Suggestions []string        `json:"suggestions"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	data := json.RawMessage("null")
	if r.Data != nil {
		raw, err := json.Marshal(r.Data)
		if err != nil {
			return nil, fmt.Errorf("chatbot: marshal %s data: %w", r.Data.responseType(), err)
		}
		data = raw
	}
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return json.Marshal(wireResponse{
		Message:     r.Message,
		Type:        r.Type(),
		Data:        data,
		Suggestions: suggestions,
	})
}

func (r *Response) UnmarshalJSON(raw []byte) error {
	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}

	var data Payload
	switch wire.Type {
	case TypeText:
	case TypePatientList:
		var v PatientList
		if err := decodeData(wire.Data, &v); err != nil {
			return err
		}
		data = v
	case TypeDentistList:
		var v DentistList
		if err := decodeData(wire.Data, &v); err != nil {
			return err
		}
		data = v
	case TypeAppointmentList:
		var v AppointmentList
		if err := decodeData(wire.Data, &v); err != nil {
			return err
		}
		data = v
	case TypeAppointmentCreated:
		var v AppointmentSummary
		if err := decodeData(wire.Data, &v); err != nil {
			return err
		}
		data = v
	case TypeAppointmentSuggestion:
		var v AppointmentDraft
		if err := decodeData(wire.Data, &v); err != nil {
			return err
		}
		data = v
	default:
		return fmt.Errorf("chatbot: unknown response type %q", wire.Type)
	}

	r.Message = wire.Message
	r.Data = data
	r.Suggestions = wire.Suggestions
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
	return nil
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("chatbot: decode response data: %w", err)
	}
	return nil
}

type AddressSummary struct {
	ID      int64  `json:"id"`
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
}

type PatientSummary struct {
	ID            int64  `json:"id"`
	PatientNumber string `json:"patient_number"`
	Name          string `json:"name"`
}

// PatientDetail is a patient with their address, as shown in search results.
type PatientDetail struct {
	PatientSummary
	Address *AddressSummary `json:"address"`
}

type DentistSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DentistDetail struct {
	DentistSummary
	Address *AddressSummary `json:"address"`
}

type SurgerySummary struct {
	ID            int64           `json:"id"`
	SurgeryNumber string          `json:"surgery_number"`
	Address       *AddressSummary `json:"address"`
}

type AppointmentSummary struct {
	ID                  int64           `json:"id"`
	AppointmentDateTime time.Time       `json:"appointment_date_time"`
	Patient             *PatientSummary `json:"patient"`
	Dentist             *DentistSummary `json:"dentist"`
	Surgery             *SurgerySummary `json:"surgery"`
}

// AppointmentDraft is what has been gathered toward a booking so far.
type AppointmentDraft struct {
	PatientInfo string   `json:"patient_info"`
	DentistInfo string   `json:"dentist_info"`
	DateTime    string   `json:"datetime"`
	Missing     []string `json:"missing"`
}

type PatientList []PatientDetail
type DentistList []DentistDetail
type AppointmentList []AppointmentSummary

func (PatientList) responseType() ResponseType        { return TypePatientList }
func (DentistList) responseType() ResponseType        { return TypeDentistList }
func (AppointmentList) responseType() ResponseType    { return TypeAppointmentList }
func (AppointmentSummary) responseType() ResponseType { return TypeAppointmentCreated }
func (AppointmentDraft) responseType() ResponseType   { return TypeAppointmentSuggestion }

func summarizeAddress(a *directory.Address) *AddressSummary {
	if a == nil {
		return nil
	}
	return &AddressSummary{ID: a.ID, Street: a.Street, City: a.City, ZipCode: a.ZipCode}
}

func summarizePatient(p *directory.Patient) *PatientSummary {
	if p == nil {
		return nil
	}
	return &PatientSummary{ID: p.ID, PatientNumber: p.PatientNumber, Name: p.Name}
}

func summarizeDentist(d *directory.Dentist) *DentistSummary {
	if d == nil {
		return nil
	}
	return &DentistSummary{ID: d.ID, Name: d.Name}
}

func summarizeAppointment(a *directory.Appointment) AppointmentSummary {
	out := AppointmentSummary{
		ID:                  a.ID,
		AppointmentDateTime: a.ScheduledAt,
		Patient:             summarizePatient(a.Patient),
		Dentist:             summarizeDentist(a.Dentist),
	}
	if a.Surgery != nil {
		out.Surgery = &SurgerySummary{
			ID:            a.Surgery.ID,
			SurgeryNumber: a.Surgery.SurgeryNumber,
			Address:       summarizeAddress(a.Surgery.Address),
		}
	}
	return out
}

func patientDetails(patients []directory.Patient) PatientList {
	out := make(PatientList, 0, len(patients))
	for i := range patients {
		out = append(out, PatientDetail{
			PatientSummary: *summarizePatient(&patients[i]),
			Address:        summarizeAddress(patients[i].Address),
		})
	}
	return out
}

func dentistDetails(dentists []directory.Dentist) DentistList {
	out := make(DentistList, 0, len(dentists))
	for i := range dentists {
		out = append(out, DentistDetail{
			DentistSummary: *summarizeDentist(&dentists[i]),
			Address:        summarizeAddress(dentists[i].Address),
		})
	}
	return out
}
