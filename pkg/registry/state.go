package registry

import "fmt"

// HoldingEntry pairs an asset with its holding in a persisted State.
type HoldingEntry struct {
	AssetID AssetID
	AssetHolding
}

// State is the storage-neutral form of a Registry. Holdings keep the
// registry's iteration order.
//
// Nonces is the host's last accepted call nonce per caller. It travels with
// the state so both commit in one write; the Registry itself never reads it
// and State leaves it nil.
type State struct {
	Controller        *Identity
	Holdings          []HoldingEntry
	LastRebalance     uint64
	RebalanceInterval uint64
	Nonces            map[Identity]int64
}

// State exports a deep copy of the registry.
func (r *Registry) State() State {
	s := State{
		LastRebalance:     r.lastRebalance,
		RebalanceInterval: r.rebalanceInterval,
		Holdings:          make([]HoldingEntry, 0, r.assets.len()),
	}
	if r.controller != nil {
		c := *r.controller
		s.Controller = &c
	}
	r.assets.each(func(id AssetID, h AssetHolding) {
		s.Holdings = append(s.Holdings, HoldingEntry{AssetID: id, AssetHolding: h})
	})
	return s
}

// FromState rebuilds a registry from persisted state.
func FromState(s State) (*Registry, error) {
	if s.RebalanceInterval == 0 {
		return nil, ErrInvalidArgument
	}
	r := &Registry{
		assets:            newHoldings(),
		lastRebalance:     s.LastRebalance,
		rebalanceInterval: s.RebalanceInterval,
	}
	if s.Controller != nil {
		c := *s.Controller
		r.controller = &c
	}
	for _, e := range s.Holdings {
		if _, dup := r.assets.get(e.AssetID); dup {
			return nil, fmt.Errorf("registry: duplicate asset %q in state", e.AssetID)
		}
		r.assets.insert(e.AssetID, e.AssetHolding)
	}
	return r, nil
}

// TotalWeight sums the stored weights.
func (s State) TotalWeight() uint64 {
	var total uint64
	for _, e := range s.Holdings {
		total += e.Weight
	}
	return total
}
