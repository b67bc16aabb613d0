// Package gemini classifies chatbot messages through the Google Generative
// Language generateContent API, failing over across a fixed list of models.
package gemini

import (
	"strings"
	"sync/atomic"
	"time"
)

// DefaultAttemptTimeout bounds one generateContent call.
const DefaultAttemptTimeout = 60 * time.Second

// DefaultBaseURL is the stable v1 models collection.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1/models"

// DefaultModels is the endpoint priority, newest model first.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-pro",
	"gemini-1.5-pro-latest",
	"gemini-pro",
}

// Endpoint is one generateContent target.
type Endpoint struct {
	URL   string
	Model string
}

// DefaultEndpoints returns the compiled endpoint list.
func DefaultEndpoints() []Endpoint {
	return EndpointsFor(DefaultBaseURL, DefaultModels)
}

// EndpointsFor builds generateContent endpoints for models under baseURL.
func EndpointsFor(baseURL string, models []string) []Endpoint {
	baseURL = strings.TrimRight(baseURL, "/")
	out := make([]Endpoint, 0, len(models))
	for _, model := range models {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}
		out = append(out, Endpoint{
			URL:   baseURL + "/" + model + ":generateContent",
			Model: model,
		})
	}
	return out
}

// stickyEndpoint remembers the first endpoint that produced a usable reply.
// Once set it is never cleared.
type stickyEndpoint struct {
	ptr atomic.Pointer[Endpoint]
}

func (s *stickyEndpoint) load() (Endpoint, bool) {
	ep := s.ptr.Load()
	if ep == nil {
		return Endpoint{}, false
	}
	return *ep, true
}

// claim records ep if no endpoint has been recorded yet and reports whether it won.
func (s *stickyEndpoint) claim(ep Endpoint) bool {
	return s.ptr.CompareAndSwap(nil, &ep)
}
