package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SDKTransport calls the service through the official Go SDK. Only the model
// name of each endpoint is used; the SDK owns the URL.
type SDKTransport struct {
	client *genai.Client
}

// NewSDKTransport creates an SDK-backed transport.
func NewSDKTransport(ctx context.Context, apiKey string) (*SDKTransport, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create sdk client: %w", err)
	}
	return &SDKTransport{client: client}, nil
}

func (t *SDKTransport) Complete(ctx context.Context, ep Endpoint, prompt string) (string, error) {
	model := t.client.GenerativeModel(ep.Model)
	model.SetTemperature(Temperature)
	model.SetTopK(TopK)
	model.SetTopP(TopP)
	model.SetMaxOutputTokens(MaxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", sdkError(ep, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if chunk, ok := part.(genai.Text); ok {
			text.WriteString(string(chunk))
		}
	}
	return strings.TrimSpace(text.String()), nil
}

// Close releases the SDK connection.
func (t *SDKTransport) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

// sdkError normalises SDK failures onto StatusError so the retry policy
// classifies both transports the same way.
func sdkError(ep Endpoint, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.Code, Message: apiErr.Message}
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.NotFound:
			return &StatusError{Code: http.StatusNotFound, Message: st.Message()}
		case codes.Unavailable:
			return &StatusError{Code: http.StatusServiceUnavailable, Message: st.Message()}
		case codes.ResourceExhausted:
			return &StatusError{Code: http.StatusTooManyRequests, Message: st.Message()}
		case codes.DeadlineExceeded:
			return &StatusError{Code: http.StatusGatewayTimeout, Message: st.Message()}
		case codes.Internal:
			return &StatusError{Code: http.StatusInternalServerError, Message: st.Message()}
		}
	}
	return fmt.Errorf("gemini: %s completion failed: %w", ep.Model, err)
}
