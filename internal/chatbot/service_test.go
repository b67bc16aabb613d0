package chatbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-ai-assistant/internal/directory"
	"github.com/wolfman30/dental-ai-assistant/internal/gemini"
	"github.com/wolfman30/dental-ai-assistant/internal/intent"
	"github.com/wolfman30/dental-ai-assistant/pkg/logging"
)

type fakeClassifier struct {
	configured  bool
	env         intent.Envelope
	err         error
	panicWith   any
	calls       int
	lastMessage string
	lastContext string
}

func (f *fakeClassifier) Configured() bool { return f.configured }

func (f *fakeClassifier) Generate(_ context.Context, message, clinicContext string) (intent.Envelope, error) {
	f.calls++
	f.lastMessage = message
	f.lastContext = clinicContext
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.env, f.err
}

// failingStore returns err from every call.
type failingStore struct {
	directory.Store
	err error
}

func (f failingStore) SearchPatients(context.Context, string) ([]directory.Patient, error) {
	return nil, f.err
}
func (f failingStore) ListPatients(context.Context) ([]directory.Patient, error) { return nil, f.err }
func (f failingStore) CountPatients(context.Context) (int, error)                { return 0, f.err }

func seededService(t *testing.T, ai IntentClassifier) (*Service, *directory.InMemoryStore) {
	t.Helper()
	store := directory.NewInMemoryStore()
	require.NoError(t, directory.SeedDemo(store, time.UTC))
	return NewService(store, ai, WithLocation(time.UTC), WithServiceLogger(logging.New("error"))), store
}

func TestProcessMessageAlwaysReturnsResponse(t *testing.T) {
	svc, _ := seededService(t, nil)
	inputs := []string{"", "   ", "?", "HELP ME", "find patient", "find patient for", "list all patients",
		"show appointments", "book appointment", "gibberish 🦷", "find dentist smith"}
	for _, input := range inputs {
		resp := svc.ProcessMessage(context.Background(), input)
		require.NotNil(t, resp, input)
		assert.NotNil(t, resp.Suggestions, input)
		assert.NotEmpty(t, resp.Message, input)
	}
}

func TestProcessMessageUnconfiguredAIUsesRules(t *testing.T) {
	ai := &fakeClassifier{configured: false}
	svc, _ := seededService(t, ai)

	resp := svc.ProcessMessage(context.Background(), "find patient Gillian")
	assert.Zero(t, ai.calls)
	assert.Equal(t, TypePatientList, resp.Type())
	assert.Equal(t, "Found 1 patient(s) matching 'Gillian':", resp.Message)
}

func TestProcessMessageEmptyPatientList(t *testing.T) {
	svc := NewService(directory.NewInMemoryStore(), nil, WithServiceLogger(logging.New("error")))

	resp := svc.ProcessMessage(context.Background(), "list all patients")
	assert.Equal(t, "No patients found in the system.", resp.Message)
	assert.Equal(t, TypeText, resp.Type())
	assert.Nil(t, resp.Data)
	assert.Equal(t, []string{"Add new patient", "Show help"}, resp.Suggestions)

	raw, err := resp.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"No patients found in the system.","type":"text","data":null,"suggestions":["Add new patient","Show help"]}`, string(raw))
}

func TestProcessMessageAIRouting(t *testing.T) {
	tests := []struct {
		name     string
		env      intent.Envelope
		wantType ResponseType
		wantMsg  string
	}{
		{
			name:     "search patient strips connective",
			env:      intent.Envelope{Intent: intent.SearchPatient, Extracted: intent.ExtractedData{SearchTerm: "the Bell"}},
			wantType: TypePatientList,
			wantMsg:  "Found 1 patient(s) matching 'Bell':",
		},
		{
			name:     "search dentist",
			env:      intent.Envelope{Intent: intent.SearchDentist, Extracted: intent.ExtractedData{SearchTerm: "Pearson"}},
			wantType: TypeDentistList,
			wantMsg:  "Found 1 dentist(s) matching 'Pearson':",
		},
		{
			name:     "search with empty term asks for one",
			env:      intent.Envelope{Intent: intent.SearchPatient},
			wantType: TypeText,
			wantMsg:  "Please provide a patient name to search. For example: 'Find patient John'",
		},
		{
			name:     "list dentists",
			env:      intent.Envelope{Intent: intent.ListDentists},
			wantType: TypeDentistList,
			wantMsg:  "Here are all dentists in the system (2 total):",
		},
		{
			name:     "list appointments",
			env:      intent.Envelope{Intent: intent.ListAppointments},
			wantType: TypeAppointmentList,
			wantMsg:  "Here are all appointments (2 total):",
		},
		{
			name:     "help",
			env:      intent.Envelope{Intent: intent.Help},
			wantType: TypeText,
			wantMsg:  helpText,
		},
		{
			name:     "unknown with message",
			env:      intent.Envelope{Intent: intent.Unknown, ResponseMessage: "Our clinic opens at 9."},
			wantType: TypeText,
			wantMsg:  "Our clinic opens at 9.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeClassifier{configured: true, env: tt.env}
			svc, _ := seededService(t, ai)

			resp := svc.ProcessMessage(context.Background(), "anything")
			assert.Equal(t, 1, ai.calls)
			assert.Equal(t, tt.wantType, resp.Type())
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestProcessMessageAIContextString(t *testing.T) {
	ai := &fakeClassifier{configured: true, env: intent.Envelope{Intent: intent.Help}}
	svc, _ := seededService(t, ai)

	svc.ProcessMessage(context.Background(), "what can you do")
	assert.Equal(t, "what can you do", ai.lastMessage)
	assert.Equal(t, "The dental system has 2 patients and 2 dentists registered. "+
		"Users can search for patients/dentists by name, view all records, or create appointments.", ai.lastContext)
}

func TestProcessMessageFallsBackToRules(t *testing.T) {
	tests := []struct {
		name string
		ai   *fakeClassifier
	}{
		{"ai error", &fakeClassifier{configured: true, err: gemini.ErrEndpointsExhausted}},
		{"unknown with empty message", &fakeClassifier{configured: true, env: intent.Envelope{Intent: intent.Unknown}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := seededService(t, tt.ai)
			resp := svc.ProcessMessage(context.Background(), "find dentist Tony")
			assert.Equal(t, 1, tt.ai.calls)
			assert.Equal(t, TypeDentistList, resp.Type())
			assert.Equal(t, "Found 1 dentist(s) matching 'Tony':", resp.Message)
		})
	}
}

func TestProcessMessageRecoversPanics(t *testing.T) {
	ai := &fakeClassifier{configured: true, panicWith: "boom"}
	svc, _ := seededService(t, ai)

	resp := svc.ProcessMessage(context.Background(), "find patient Jill")
	require.NotNil(t, resp)
	assert.Equal(t, defaultText, resp.Message)
	assert.Equal(t, []string{"Help", "Find patient", "Find dentist", "Show appointments"}, resp.Suggestions)
}

func TestProcessMessageStoreFailureDegrades(t *testing.T) {
	store := failingStore{err: errors.New("connection refused")}
	ai := &fakeClassifier{configured: true, env: intent.Envelope{Intent: intent.ListPatients}}
	svc := NewService(store, ai, WithServiceLogger(logging.New("error")))

	resp := svc.ProcessMessage(context.Background(), "list all patients")
	assert.Zero(t, ai.calls, "context building fails before the classifier is called")
	assert.Equal(t, TypeText, resp.Type())
	assert.NotContains(t, resp.Message, "connection refused")
	assert.Equal(t, []string{"Try again", "Help"}, resp.Suggestions)
}

func TestAIAppointmentGuidance(t *testing.T) {
	ai := &fakeClassifier{configured: true, env: intent.Envelope{
		Intent:          intent.MakeAppointment,
		Extracted:       intent.ExtractedData{PatientInfo: "Jill"},
		ResponseMessage: "Sure.",
	}}
	svc, store := seededService(t, ai)

	resp := svc.ProcessMessage(context.Background(), "book Jill in")
	assert.Equal(t, TypeAppointmentSuggestion, resp.Type())
	assert.Equal(t, "🤖 I can help you make an appointment! Sure.\n\n"+
		"\n👨‍⚕️ Please tell me which dentist you'd like to see."+
		"\n📅 Please specify your preferred date and time (e.g., 'tomorrow at 2pm' or '2025-10-25 14:00').", resp.Message)
	draft, ok := resp.Data.(AppointmentDraft)
	require.True(t, ok)
	assert.Equal(t, "Jill", draft.PatientInfo)
	assert.Equal(t, []string{"dentist", "datetime"}, draft.Missing)
	assert.Equal(t, []string{"Find patient", "Find dentist", "List all appointments"}, resp.Suggestions)

	appts, err := store.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Len(t, appts, 2, "guidance never books")
}

func TestAIAppointmentBooksWhenComplete(t *testing.T) {
	ai := &fakeClassifier{configured: true, env: intent.Envelope{
		Intent: intent.MakeAppointment,
		Extracted: intent.ExtractedData{
			PatientInfo: "Jill",
			DentistInfo: "Pearson",
			DateTime:    "2025-10-25T14:00:00",
		},
	}}
	svc, _ := seededService(t, ai)

	resp := svc.ProcessMessage(context.Background(), "book Jill with Dr Pearson on Oct 25 at 2pm")
	assert.Equal(t, TypeAppointmentCreated, resp.Type())
	summary, ok := resp.Data.(AppointmentSummary)
	require.True(t, ok)
	assert.Equal(t, "Jill Bell", summary.Patient.Name)
	assert.Equal(t, "Helen Pearson", summary.Dentist.Name)
}

func TestRuleAppointmentHelpNeverBooks(t *testing.T) {
	svc, store := seededService(t, nil)

	resp := svc.ProcessMessage(context.Background(), "Please make appointment for Jill with Tony 2025-10-25 14:00")
	assert.Equal(t, appointmentHelpText, resp.Message)

	appts, err := store.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Len(t, appts, 2)
}
