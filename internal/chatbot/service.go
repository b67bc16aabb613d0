// Package chatbot answers free-text clinic questions. Messages are classified
// by the generative-language client when one is configured and by keyword
// rules otherwise.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dental-ai-assistant/internal/directory"
	"github.com/wolfman30/dental-ai-assistant/internal/gemini"
	"github.com/wolfman30/dental-ai-assistant/internal/intent"
	"github.com/wolfman30/dental-ai-assistant/internal/observability/metrics"
	"github.com/wolfman30/dental-ai-assistant/pkg/logging"
)

// IntentClassifier is the generative-language client as seen by the chatbot.
type IntentClassifier interface {
	Configured() bool
	Generate(ctx context.Context, userMessage, clinicContext string) (intent.Envelope, error)
}

// Service resolves chatbot messages to responses.
type Service struct {
	store    directory.Store
	resolver *Resolver
	ai       IntentClassifier
	location *time.Location
	logger   *logging.Logger
	metrics  *metrics.ChatbotMetrics
	tracer   trace.Tracer
}

type ServiceOption func(*Service)

// WithLocation sets the clinic time zone used to read appointment times.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithServiceLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithServiceMetrics(m *metrics.ChatbotMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the chatbot. ai may be nil, in which case only keyword
// rules are used.
func NewService(store directory.Store, ai IntentClassifier, opts ...ServiceOption) *Service {
	if store == nil {
		panic("chatbot: directory store required")
	}
	s := &Service{
		store:    store,
		resolver: NewResolver(store),
		ai:       ai,
		location: time.Local,
		logger:   logging.Default(),
		tracer:   otel.Tracer("dental.internal.chatbot"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Component("chatbot")
	return s
}

// ProcessMessage never returns nil and never panics.
func (s *Service) ProcessMessage(ctx context.Context, message string) (resp *Response) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.tracer.Start(ctx, "chatbot.process_message")
	defer span.End()

	path := "rules"
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chatbot message handling panicked", "panic", r)
			resp = defaultResponse()
			path = "recovered"
		}
		span.SetAttributes(
			attribute.String("chatbot.path", path),
			attribute.String("chatbot.response_type", string(resp.Type())),
		)
		s.metrics.ObserveMessage(path, string(resp.Type()))
	}()

	if s.aiConfigured() {
		if aiResp, ok := s.processWithAI(ctx, message); ok {
			path = "ai"
			return aiResp
		}
	}
	return s.processWithRules(ctx, message)
}

func (s *Service) aiConfigured() bool {
	return s.ai != nil && s.ai.Configured()
}

func (s *Service) processWithAI(ctx context.Context, message string) (*Response, bool) {
	clinicContext, err := s.clinicContext(ctx)
	if err != nil {
		s.logger.Warn("building clinic context failed, using rules", "error", err)
		s.metrics.ObserveFallback("context")
		return nil, false
	}

	env, err := s.ai.Generate(ctx, message, clinicContext)
	if err != nil {
		s.logger.Warn("ai processing failed, falling back to rules", "error", err)
		s.metrics.ObserveFallback(fallbackReason(err))
		return nil, false
	}
	s.logger.Debug("ai classified message", "intent", env.Intent.String())

	resp := s.routeIntent(ctx, env)
	if resp == nil {
		s.metrics.ObserveFallback("unknown_intent")
		return nil, false
	}
	return resp, true
}

// routeIntent maps a classified envelope to a handler. It returns nil when
// the envelope gives nothing to act on.
func (s *Service) routeIntent(ctx context.Context, env intent.Envelope) *Response {
	switch env.Intent {
	case intent.SearchPatient:
		return s.searchPatients(ctx, cleanSearchTerm(env.Extracted.SearchTerm))
	case intent.SearchDentist:
		return s.searchDentists(ctx, cleanSearchTerm(env.Extracted.SearchTerm))
	case intent.MakeAppointment:
		return s.appointmentGuidance(ctx, env)
	case intent.ListPatients:
		return s.listPatients(ctx)
	case intent.ListDentists:
		return s.listDentists(ctx)
	case intent.ListAppointments:
		return s.listAppointments(ctx)
	case intent.Help:
		return helpResponse()
	}
	if strings.TrimSpace(env.ResponseMessage) == "" {
		return nil
	}
	return textResponse(env.ResponseMessage, "Help", "Find patient", "Find dentist", "Show appointments")
}

func (s *Service) clinicContext(ctx context.Context) (string, error) {
	patients, err := s.store.CountPatients(ctx)
	if err != nil {
		return "", fmt.Errorf("chatbot: count patients: %w", err)
	}
	dentists, err := s.store.CountDentists(ctx)
	if err != nil {
		return "", fmt.Errorf("chatbot: count dentists: %w", err)
	}
	return fmt.Sprintf("The dental system has %d patients and %d dentists registered. "+
		"Users can search for patients/dentists by name, view all records, or create appointments.",
		patients, dentists), nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, gemini.ErrEndpointsExhausted):
		return "exhausted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
