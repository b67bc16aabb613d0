package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Transport performs one generateContent call against an endpoint and
// returns the first candidate's text.
type Transport interface {
	Complete(ctx context.Context, ep Endpoint, prompt string) (string, error)
}

// RESTTransport posts JSON to the generateContent REST endpoint.
type RESTTransport struct {
	apiKey     string
	httpClient *http.Client
}

// NewRESTTransport creates a REST transport. timeout bounds connect, response
// headers, and the whole exchange.
func NewRESTTransport(apiKey string, timeout time.Duration) *RESTTransport {
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.ResponseHeaderTimeout = timeout
	return &RESTTransport{
		apiKey: strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// WithHTTPClient swaps the HTTP client, mainly for tests.
func (t *RESTTransport) WithHTTPClient(client *http.Client) *RESTTransport {
	if client != nil {
		t.httpClient = client
	}
	return t
}

type restPart struct {
	Text string `json:"text"`
}

type restContent struct {
	Parts []restPart `json:"parts"`
}

type restGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int32   `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type restRequest struct {
	Contents         []restContent        `json:"contents"`
	GenerationConfig restGenerationConfig `json:"generationConfig"`
}

type restResponse struct {
	Candidates []struct {
		Content *restContent `json:"content"`
	} `json:"candidates"`
}

type restErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (t *RESTTransport) Complete(ctx context.Context, ep Endpoint, prompt string) (string, error) {
	body, err := json.Marshal(restRequest{
		Contents: []restContent{{Parts: []restPart{{Text: prompt}}}},
		GenerationConfig: restGenerationConfig{
			Temperature:     Temperature,
			TopK:            TopK,
			TopP:            TopP,
			MaxOutputTokens: MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	target := ep.URL + "?key=" + url.QueryEscape(t.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: post %s: %w", ep.Model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr restErrorBody
		_ = json.Unmarshal(raw, &apiErr)
		return "", &StatusError{Code: resp.StatusCode, Message: apiErr.Error.Message}
	}

	var parsed restResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
