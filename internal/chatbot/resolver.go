package chatbot

import (
	"context"
	"errors"
	"strings"

	"github.com/wolfman30/dental-ai-assistant/internal/directory"
)

// ErrNoMatch means the query matched no directory record.
var ErrNoMatch = errors.New("chatbot: no matching record")

// Resolver turns loose patient and dentist references into single records.
// When several records match, the first in store order wins.
type Resolver struct {
	store directory.Store
}

func NewResolver(store directory.Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) ResolvePatient(ctx context.Context, query string) (*directory.Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoMatch
	}
	patients, err := r.store.SearchPatients(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, ErrNoMatch
	}
	return &patients[0], nil
}

func (r *Resolver) ResolveDentist(ctx context.Context, query string) (*directory.Dentist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoMatch
	}
	dentists, err := r.store.SearchDentists(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(dentists) == 0 {
		return nil, ErrNoMatch
	}
	return &dentists[0], nil
}
