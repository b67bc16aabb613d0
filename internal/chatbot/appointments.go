package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dental-ai-assistant/internal/intent"
)

const confirmationLayout = "Jan 02, 2006 at 03:04 PM"

// Book resolves the patient and dentist, parses the requested time, and
// creates the appointment. Every outcome is reported as a Response.
func (s *Service) Book(ctx context.Context, patientQuery, dentistQuery, dateTimeText string) *Response {
	ctx, span := s.tracer.Start(ctx, "chatbot.book")
	defer span.End()

	patient, err := s.resolver.ResolvePatient(ctx, patientQuery)
	if err != nil {
		if !errors.Is(err, ErrNoMatch) {
			return s.bookingFailed(span, err)
		}
		return textResponse(
			fmt.Sprintf("❌ I couldn't find a patient matching '%s'. Please search for the patient first.", patientQuery),
			"Find patient "+patientQuery, "List all patients")
	}

	dentist, err := s.resolver.ResolveDentist(ctx, dentistQuery)
	if err != nil {
		if !errors.Is(err, ErrNoMatch) {
			return s.bookingFailed(span, err)
		}
		return textResponse(
			fmt.Sprintf("❌ I couldn't find a dentist matching '%s'. Please search for the dentist first.", dentistQuery),
			"Find dentist "+dentistQuery, "List all dentists")
	}

	at, ok := ParseDateTime(dateTimeText, s.location)
	if !ok {
		return textResponse(
			fmt.Sprintf("❌ I couldn't understand the date/time '%s'. Please use format like '2025-10-25 14:00' or 'tomorrow at 2pm'.", dateTimeText),
			"Try again with different time", "Show appointments")
	}

	span.SetAttributes(
		attribute.Int64("patient.id", patient.ID),
		attribute.Int64("dentist.id", dentist.ID),
	)
	created, err := s.store.CreateAppointment(ctx, patient.ID, dentist.ID, at)
	if err != nil {
		return s.bookingFailed(span, err)
	}

	s.logger.Info("appointment created",
		"appointment_id", created.ID,
		"patient_id", patient.ID,
		"dentist_id", dentist.ID,
	)
	message := fmt.Sprintf("✅ Appointment created successfully!\n\n"+
		"👤 Patient: %s\n"+
		"👨‍⚕️ Dentist: %s\n"+
		"📅 Date/Time: %s\n\n"+
		"The appointment has been saved to the system.",
		patient.Name, dentist.Name, at.Format(confirmationLayout))
	return dataResponse(message, summarizeAppointment(created),
		"Show all appointments", "Make another appointment", "Find patient")
}

func (s *Service) bookingFailed(span trace.Span, err error) *Response {
	span.RecordError(err)
	span.SetStatus(codes.Error, "booking failed")
	s.logger.Error("appointment booking failed", "error", err)
	return textResponse("❌ Sorry, I encountered an error creating the appointment. Please try again.",
		"Try again", "Show appointments", "Help")
}

var guidanceLines = []struct {
	missing string
	line    string
}{
	{"patient", "\n👤 Please tell me the patient's name or ID."},
	{"dentist", "\n👨‍⚕️ Please tell me which dentist you'd like to see."},
	{"datetime", "\n📅 Please specify your preferred date and time (e.g., 'tomorrow at 2pm' or '2025-10-25 14:00')."},
}

// appointmentGuidance books when the envelope carries every detail and
// otherwise asks for what is missing.
func (s *Service) appointmentGuidance(ctx context.Context, env intent.Envelope) *Response {
	extracted := env.Extracted
	if env.HasBookingDetails() {
		return s.Book(ctx, extracted.PatientInfo, extracted.DentistInfo, extracted.DateTime)
	}

	draft := AppointmentDraft{
		PatientInfo: extracted.PatientInfo,
		DentistInfo: extracted.DentistInfo,
		DateTime:    extracted.DateTime,
		Missing:     []string{},
	}
	present := map[string]bool{
		"patient":  extracted.PatientInfo != "",
		"dentist":  extracted.DentistInfo != "",
		"datetime": extracted.DateTime != "",
	}

	var b strings.Builder
	b.WriteString("🤖 I can help you make an appointment! ")
	if env.ResponseMessage != "" {
		b.WriteString(env.ResponseMessage)
		b.WriteString("\n\n")
	}
	for _, g := range guidanceLines {
		if present[g.missing] {
			continue
		}
		draft.Missing = append(draft.Missing, g.missing)
		b.WriteString(g.line)
	}
	return dataResponse(b.String(), draft, "Find patient", "Find dentist", "List all appointments")
}
