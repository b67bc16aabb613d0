package chatbot

import (
	"context"
	"regexp"
	"strings"
)

var (
	patientSearchTriggers = []string{"find patient", "search patient", "patient named", "show patient"}
	dentistSearchTriggers = []string{"find dentist", "search dentist", "dentist named", "show dentist"}
)

type rule struct {
	name     string
	triggers []string
	exact    []string
	handle   func(s *Service, ctx context.Context, message string) *Response
}

// rules are evaluated in order against the lower-cased message; first match wins.
var rules = []rule{
	{
		name:     "search_patient",
		triggers: patientSearchTriggers,
		handle: func(s *Service, ctx context.Context, message string) *Response {
			return s.searchPatients(ctx, extractSearchTerm(message, patientSearchTriggers))
		},
	},
	{
		name:     "search_dentist",
		triggers: dentistSearchTriggers,
		handle: func(s *Service, ctx context.Context, message string) *Response {
			return s.searchDentists(ctx, extractSearchTerm(message, dentistSearchTriggers))
		},
	},
	{
		name:     "appointment_help",
		triggers: []string{"make appointment", "book appointment", "schedule appointment", "create appointment"},
		handle: func(*Service, context.Context, string) *Response {
			return appointmentHelpResponse()
		},
	},
	{
		name:     "list_patients",
		triggers: []string{"list patients", "show all patients", "all patients"},
		handle: func(s *Service, ctx context.Context, _ string) *Response {
			return s.listPatients(ctx)
		},
	},
	{
		name:     "list_dentists",
		triggers: []string{"list dentists", "show all dentists", "all dentists"},
		handle: func(s *Service, ctx context.Context, _ string) *Response {
			return s.listDentists(ctx)
		},
	},
	{
		name:     "list_appointments",
		triggers: []string{"show appointments", "list appointments", "all appointments", "upcoming appointments"},
		handle: func(s *Service, ctx context.Context, _ string) *Response {
			return s.listAppointments(ctx)
		},
	},
	{
		name:     "help",
		triggers: []string{"help"},
		exact:    []string{"?"},
		handle: func(*Service, context.Context, string) *Response {
			return helpResponse()
		},
	},
}

func (r rule) matches(lower string) bool {
	for _, e := range r.exact {
		if lower == e {
			return true
		}
	}
	for _, t := range r.triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// matchRule returns the first rule whose triggers appear in message.
func matchRule(message string) (rule, bool) {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		if r.matches(lower) {
			return r, true
		}
	}
	return rule{}, false
}

func (s *Service) processWithRules(ctx context.Context, message string) *Response {
	r, ok := matchRule(message)
	if !ok {
		return defaultResponse()
	}
	s.logger.Debug("keyword rule matched", "rule", r.name)
	return r.handle(s, ctx, message)
}

var leadingConnective = regexp.MustCompile(`(?i)^(for|with|the|a|an)\s+`)

// extractSearchTerm returns the text, case preserved, after the first trigger
// present in message, without a leading connective word.
func extractSearchTerm(message string, triggers []string) string {
	for _, trigger := range triggers {
		loc := triggerPattern(trigger).FindStringIndex(message)
		if loc == nil {
			continue
		}
		return cleanSearchTerm(message[loc[1]:])
	}
	return ""
}

func cleanSearchTerm(term string) string {
	term = strings.TrimSpace(term)
	return leadingConnective.ReplaceAllString(term, "")
}

var triggerPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, r := range rules {
		for _, t := range r.triggers {
			triggerPatterns[t] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(t))
		}
	}
}

func triggerPattern(trigger string) *regexp.Regexp {
	if re, ok := triggerPatterns[trigger]; ok {
		return re
	}
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(trigger))
}
