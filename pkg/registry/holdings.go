package registry

// holdings is an insertion-ordered map of asset holdings. Iteration order is
// the order in which assets first appeared, which keeps the read views stable
// for a given storage state.
type holdings struct {
	keys  []AssetID
	items map[AssetID]AssetHolding
}

func newHoldings() *holdings {
	return &holdings{items: make(map[AssetID]AssetHolding)}
}

func (h *holdings) len() int { return len(h.keys) }

func (h *holdings) get(id AssetID) (AssetHolding, bool) {
	v, ok := h.items[id]
	return v, ok
}

func (h *holdings) insert(id AssetID, v AssetHolding) {
	if _, ok := h.items[id]; !ok {
		h.keys = append(h.keys, id)
	}
	h.items[id] = v
}

func (h *holdings) each(fn func(id AssetID, v AssetHolding)) {
	for _, id := range h.keys {
		fn(id, h.items[id])
	}
}
