package registry

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Registry is the weight-registry state machine. It tracks a single
// controller and a basis-point allocation across assets whose weights always
// sum to TotalWeightBps once any batch has been accepted.
//
// A Registry is not safe for concurrent use; hosts serialize calls.
type Registry struct {
	controller        *Identity
	assets            *holdings
	lastRebalance     uint64
	rebalanceInterval uint64
}

// NewDefault returns an empty registry with the default rebalance interval.
func NewDefault() *Registry {
	return &Registry{
		assets:            newHoldings(),
		rebalanceInterval: DefaultRebalanceInterval,
	}
}

// New returns an empty registry with the given rebalance interval.
func New(rebalanceInterval uint64) (*Registry, error) {
	if rebalanceInterval == 0 {
		return nil, ErrInvalidArgument
	}
	r := NewDefault()
	r.rebalanceInterval = rebalanceInterval
	return r, nil
}

// Controller returns the registered controller, if any.
func (r *Registry) Controller() (Identity, bool) {
	if r.controller == nil {
		return "", false
	}
	return *r.controller, true
}

// RebalanceInterval returns the immutable rebalance interval.
func (r *Registry) RebalanceInterval() uint64 { return r.rebalanceInterval }

// LastRebalance returns the last rebalance timestamp. Nothing advances it yet.
func (r *Registry) LastRebalance() uint64 { return r.lastRebalance }

// RegistrationThreshold returns the minimum deposit for the given storage byte cost.
// An overflowing product saturates to the maximum value.
func RegistrationThreshold(byteCost *uint256.Int) *uint256.Int {
	threshold, overflow := new(uint256.Int).MulOverflow(byteCost, uint256.NewInt(RegistrationStorageBytes))
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return threshold
}

// RegisterController sets the controller once. The attached deposit must
// cover the storage cost of RegistrationStorageBytes bytes.
func (r *Registry) RegisterController(candidate Identity, env Env) error {
	if r.controller != nil {
		return ErrAlreadyRegistered
	}
	threshold := RegistrationThreshold(env.StorageByteCost())
	if env.AttachedDeposit().Lt(threshold) {
		return fmt.Errorf("%w: attached %s, required %s", ErrInsufficientPayment, env.AttachedDeposit().Dec(), threshold.Dec())
	}
	c := candidate
	r.controller = &c
	return nil
}

// UpdateWeights applies a batch of weight updates on behalf of env's caller.
// The batch is merged into the current weights (later entries win) and must
// leave the whole portfolio summing to TotalWeightBps; otherwise nothing is
// written.
func (r *Registry) UpdateWeights(updates []AssetWeight, env Env) error {
	if r.controller == nil {
		return ErrNotRegistered
	}
	if env.Predecessor() != *r.controller {
		return ErrUnauthorized
	}
	if err := r.validate(updates); err != nil {
		return err
	}

	now := env.BlockTimestamp()
	for _, u := range updates {
		holding, ok := r.assets.get(u.AssetID)
		if !ok {
			holding = AssetHolding{}
		}
		holding.Weight = u.Weight
		holding.LastUpdated = now
		r.assets.insert(u.AssetID, holding)
	}
	return nil
}

// validate runs the merge-then-sum check against a scratch copy of the weights.
func (r *Registry) validate(updates []AssetWeight) error {
	merged := make(map[AssetID]uint64, r.assets.len()+len(updates))
	r.assets.each(func(id AssetID, h AssetHolding) {
		merged[id] = h.Weight
	})
	for _, u := range updates {
		if u.Weight > TotalWeightBps {
			return fmt.Errorf("%w: asset %s weight %d exceeds %d", ErrInvalidWeightSum, u.AssetID, u.Weight, TotalWeightBps)
		}
		merged[u.AssetID] = u.Weight
	}
	// Every term is bounded by TotalWeightBps, so the sum cannot overflow for
	// any realistic asset count.
	var total uint64
	for _, w := range merged {
		total += w
	}
	if total != TotalWeightBps {
		return fmt.Errorf("%w: got %d", ErrInvalidWeightSum, total)
	}
	return nil
}

// Weights returns one row per held asset in storage order.
func (r *Registry) Weights() []AssetWeight {
	out := make([]AssetWeight, 0, r.assets.len())
	r.assets.each(func(id AssetID, h AssetHolding) {
		out = append(out, AssetWeight{AssetID: id, Weight: h.Weight})
	})
	return out
}

// Assets returns every held asset identifier in storage order.
func (r *Registry) Assets() []AssetID {
	out := make([]AssetID, 0, r.assets.len())
	r.assets.each(func(id AssetID, _ AssetHolding) {
		out = append(out, id)
	})
	return out
}

// Holding returns the stored record for an asset.
func (r *Registry) Holding(id AssetID) (AssetHolding, bool) {
	return r.assets.get(id)
}
