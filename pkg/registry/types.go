package registry

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// TotalWeightBps is the exact sum every accepted portfolio must reach (100%).
	TotalWeightBps uint64 = 10000
	// DefaultRebalanceInterval is roughly one day at one block per second.
	DefaultRebalanceInterval uint64 = 86400
	// RegistrationStorageBytes is the byte allowance a controller pays storage for.
	RegistrationStorageBytes uint64 = 100
)

// AssetID identifies a tradable asset. It is opaque to the registry.
type AssetID string

// Identity identifies an account that can call into the registry.
type Identity string

// AssetHolding is the per-asset record kept by the registry.
// Balance and LastPrice are reserved for a rebalancing executor and oracle
// integration; the registry initialises them to zero and never touches them.
type AssetHolding struct {
	Balance     uint256.Int
	Weight      uint64
	LastPrice   uint256.Int
	LastUpdated uint64
}

// AssetWeight is both an update entry and a row of the weights view.
type AssetWeight struct {
	AssetID AssetID `json:"asset_id" msgpack:"asset_id"`
	Weight  uint64  `json:"weight" msgpack:"weight"`
}

func (w AssetWeight) String() string {
	return fmt.Sprintf("%s:%d", w.AssetID, w.Weight)
}

// Env is the ambient view of the hosting environment for a single call.
type Env interface {
	// Predecessor is the identity that issued the current call.
	Predecessor() Identity
	// AttachedDeposit is the payment attached to the current call.
	AttachedDeposit() *uint256.Int
	// StorageByteCost is the host's current price per stored byte.
	StorageByteCost() *uint256.Int
	// BlockTimestamp is the host timestamp at the moment of the call.
	BlockTimestamp() uint64
}

// StaticEnv is a fixed Env value, handy for hosts that precompute the call context.
type StaticEnv struct {
	Caller    Identity
	Deposit   uint256.Int
	ByteCost  uint256.Int
	Timestamp uint64
}

func (e StaticEnv) Predecessor() Identity { return e.Caller }

func (e StaticEnv) AttachedDeposit() *uint256.Int { return new(uint256.Int).Set(&e.Deposit) }

func (e StaticEnv) StorageByteCost() *uint256.Int { return new(uint256.Int).Set(&e.ByteCost) }

func (e StaticEnv) BlockTimestamp() uint64 { return e.Timestamp }
