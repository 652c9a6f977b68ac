// Package memory keeps registry state in process memory.
package memory

import (
	"context"
	"sync"

	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

var _ host.Store = (*Store)(nil)

// Store is a host.Store backed by a map. Load and Save copy state so callers
// never alias stored holdings.
type Store struct {
	mu     sync.RWMutex
	states map[string]registry.State
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{states: make(map[string]registry.State)}
}

// Load returns a copy of the stored state or host.ErrStateNotFound.
func (s *Store) Load(_ context.Context, registryID string) (*registry.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[registryID]
	if !ok {
		return nil, host.ErrStateNotFound
	}
	out := clone(st)
	return &out, nil
}

// Save replaces the stored state.
func (s *Store) Save(_ context.Context, registryID string, state registry.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[registryID] = clone(state)
	return nil
}

func clone(st registry.State) registry.State {
	out := st
	if st.Controller != nil {
		c := *st.Controller
		out.Controller = &c
	}
	out.Holdings = append([]registry.HoldingEntry(nil), st.Holdings...)
	if st.Nonces != nil {
		out.Nonces = make(map[registry.Identity]int64, len(st.Nonces))
		for k, v := range st.Nonces {
			out.Nonces[k] = v
		}
	}
	return out
}
