// Package codec converts registry state to a JSON-friendly document shared by
// the snapshot stores and the Redis snapshot cache.
package codec

import (
	"fmt"

	"github.com/holiman/uint256"

	"indexfund-api/pkg/registry"
)

// Document is the serialized form of registry.State.
type Document struct {
	Controller        *string   `json:"controller,omitempty"`
	RebalanceInterval uint64    `json:"rebalance_interval"`
	LastRebalance     uint64    `json:"last_rebalance"`
	Holdings          []Holding `json:"holdings"`
	// Nonces maps caller identity to its last accepted call nonce.
	Nonces map[string]int64 `json:"nonces,omitempty"`
}

// Holding keeps amounts as decimal strings; they may exceed 64 bits.
type Holding struct {
	AssetID     string `json:"asset_id"`
	Balance     string `json:"balance"`
	Weight      uint64 `json:"weight"`
	LastPrice   string `json:"last_price"`
	LastUpdated uint64 `json:"last_updated"`
}

// Encode converts a state into its document form.
func Encode(st registry.State) Document {
	doc := Document{
		RebalanceInterval: st.RebalanceInterval,
		LastRebalance:     st.LastRebalance,
		Holdings:          make([]Holding, 0, len(st.Holdings)),
	}
	if st.Controller != nil {
		c := string(*st.Controller)
		doc.Controller = &c
	}
	if len(st.Nonces) > 0 {
		doc.Nonces = make(map[string]int64, len(st.Nonces))
		for caller, n := range st.Nonces {
			doc.Nonces[string(caller)] = n
		}
	}
	for _, e := range st.Holdings {
		doc.Holdings = append(doc.Holdings, Holding{
			AssetID:     string(e.AssetID),
			Balance:     e.Balance.Dec(),
			Weight:      e.Weight,
			LastPrice:   e.LastPrice.Dec(),
			LastUpdated: e.LastUpdated,
		})
	}
	return doc
}

// State decodes the document.
func (d Document) State() (*registry.State, error) {
	st := &registry.State{
		RebalanceInterval: d.RebalanceInterval,
		LastRebalance:     d.LastRebalance,
		Holdings:          make([]registry.HoldingEntry, 0, len(d.Holdings)),
	}
	if d.Controller != nil {
		c := registry.Identity(*d.Controller)
		st.Controller = &c
	}
	if len(d.Nonces) > 0 {
		st.Nonces = make(map[registry.Identity]int64, len(d.Nonces))
		for caller, n := range d.Nonces {
			st.Nonces[registry.Identity(caller)] = n
		}
	}
	for _, h := range d.Holdings {
		balance, err := ParseAmount(h.Balance)
		if err != nil {
			return nil, fmt.Errorf("asset %s balance: %w", h.AssetID, err)
		}
		price, err := ParseAmount(h.LastPrice)
		if err != nil {
			return nil, fmt.Errorf("asset %s last_price: %w", h.AssetID, err)
		}
		st.Holdings = append(st.Holdings, registry.HoldingEntry{
			AssetID: registry.AssetID(h.AssetID),
			AssetHolding: registry.AssetHolding{
				Balance:     *balance,
				Weight:      h.Weight,
				LastPrice:   *price,
				LastUpdated: h.LastUpdated,
			},
		})
	}
	return st, nil
}

// ParseAmount reads a decimal amount; empty means zero.
func ParseAmount(raw string) (*uint256.Int, error) {
	if raw == "" {
		return new(uint256.Int), nil
	}
	return uint256.FromDecimal(raw)
}
