package app

import (
	"sync"

	"github.com/opsdeck/tenantctl/internal/domain"
)

// Sequencer serializes mutations per tenant. Every mutation takes a
// monotonically increasing token before dispatching; a second mutation for
// the same tenant fails fast while the first is in flight, and a
// completion whose token is no longer current is reported stale so the
// caller can discard the result instead of applying it.
type Sequencer struct {
	mu     sync.Mutex
	seq    map[string]uint64
	active map[string]uint64
}

// NewSequencer creates an empty per-tenant sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{
		seq:    make(map[string]uint64),
		active: make(map[string]uint64),
	}
}

// Begin issues the next token for the tenant. It fails with a
// PreconditionError when a mutation is already in flight.
func (s *Sequencer) Begin(tenantID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[tenantID] != 0 {
		return 0, &domain.PreconditionError{Reason: "another mutation is in flight for this tenant"}
	}

	s.seq[tenantID]++
	token := s.seq[tenantID]
	s.active[tenantID] = token
	return token, nil
}

// Finish releases the token and reports whether it is still current. A
// false return means a newer mutation was issued and this completion must
// be dropped, not applied.
func (s *Sequencer) Finish(tenantID string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[tenantID] == token {
		delete(s.active, tenantID)
	}
	return token == s.seq[tenantID]
}
