package chatbot

import (
	"context"
	"fmt"
)

const helpText = "🤖 Dental Assistant Bot Help\n\n" +
	"I can help you with:\n\n" +
	"📋 Patient Management:\n" +
	"  • 'Find patient [name]' - Search for a patient\n" +
	"  • 'List all patients' - Show all patients\n\n" +
	"👨‍⚕️ Dentist Management:\n" +
	"  • 'Find dentist [name]' - Search for a dentist\n" +
	"  • 'List all dentists' - Show all dentists\n\n" +
	"📅 Appointments:\n" +
	"  • 'Make appointment' - Get help creating an appointment\n" +
	"  • 'Show appointments' - View all appointments\n\n" +
	"Type 'help' anytime to see this message again!"

const appointmentHelpText = "To make an appointment, I need the following information:\n" +
	"1. Patient name or ID\n" +
	"2. Dentist name or ID\n" +
	"3. Preferred date and time\n\n" +
	"You can also use the 'Create Appointment' form from the navigation menu for a guided process."

const defaultText = "I'm not sure I understand. I can help you search for patients, dentists, and manage appointments. " +
	"Type 'help' to see what I can do!"

func helpResponse() *Response {
	return textResponse(helpText, "Find patient", "Find dentist", "List all patients", "Show appointments")
}

func appointmentHelpResponse() *Response {
	return textResponse(appointmentHelpText, "Find patient", "Find dentist", "List all appointments")
}

func defaultResponse() *Response {
	return textResponse(defaultText, "Help", "Find patient", "Find dentist", "Show appointments")
}

func unavailableResponse() *Response {
	return textResponse("Sorry, I couldn't reach the clinic records right now. Please try again in a moment.",
		"Try again", "Help")
}

func (s *Service) searchPatients(ctx context.Context, term string) *Response {
	if term == "" {
		return textResponse("Please provide a patient name to search. For example: 'Find patient John'",
			"List all patients", "Find dentist", "Make appointment")
	}
	patients, err := s.store.SearchPatients(ctx, term)
	if err != nil {
		s.logger.Error("patient search failed", "term", term, "error", err)
		return unavailableResponse()
	}
	if len(patients) == 0 {
		return textResponse(fmt.Sprintf("No patients found matching '%s'. Would you like to see all patients?", term),
			"List all patients", "Try another search")
	}
	return dataResponse(fmt.Sprintf("Found %d patient(s) matching '%s':", len(patients), term),
		patientDetails(patients),
		"Make appointment", "Find dentist", "Search another patient")
}

func (s *Service) searchDentists(ctx context.Context, term string) *Response {
	if term == "" {
		return textResponse("Please provide a dentist name to search. For example: 'Find dentist Smith'",
			"List all dentists", "Find patient", "Make appointment")
	}
	dentists, err := s.store.SearchDentists(ctx, term)
	if err != nil {
		s.logger.Error("dentist search failed", "term", term, "error", err)
		return unavailableResponse()
	}
	if len(dentists) == 0 {
		return textResponse(fmt.Sprintf("No dentists found matching '%s'. Would you like to see all dentists?", term),
			"List all dentists", "Try another search")
	}
	return dataResponse(fmt.Sprintf("Found %d dentist(s) matching '%s':", len(dentists), term),
		dentistDetails(dentists),
		"Make appointment", "Find patient", "Search another dentist")
}

func (s *Service) listPatients(ctx context.Context) *Response {
	patients, err := s.store.ListPatients(ctx)
	if err != nil {
		s.logger.Error("list patients failed", "error", err)
		return unavailableResponse()
	}
	if len(patients) == 0 {
		return textResponse("No patients found in the system.", "Add new patient", "Show help")
	}
	return dataResponse(fmt.Sprintf("Here are all patients in the system (%d total):", len(patients)),
		patientDetails(patients),
		"Search patient", "Make appointment", "Find dentist")
}

func (s *Service) listDentists(ctx context.Context) *Response {
	dentists, err := s.store.ListDentists(ctx)
	if err != nil {
		s.logger.Error("list dentists failed", "error", err)
		return unavailableResponse()
	}
	if len(dentists) == 0 {
		return textResponse("No dentists found in the system.", "Add new dentist", "Show help")
	}
	return dataResponse(fmt.Sprintf("Here are all dentists in the system (%d total):", len(dentists)),
		dentistDetails(dentists),
		"Search dentist", "Make appointment", "Find patient")
}

func (s *Service) listAppointments(ctx context.Context) *Response {
	appointments, err := s.store.ListAppointments(ctx)
	if err != nil {
		s.logger.Error("list appointments failed", "error", err)
		return unavailableResponse()
	}
	if len(appointments) == 0 {
		return textResponse("No appointments found in the system.", "Make appointment", "Find patient", "Find dentist")
	}
	summaries := make(AppointmentList, 0, len(appointments))
	for i := range appointments {
		summaries = append(summaries, summarizeAppointment(&appointments[i]))
	}
	return dataResponse(fmt.Sprintf("Here are all appointments (%d total):", len(appointments)),
		summaries,
		"Make appointment", "Find patient", "Find dentist")
}
