package host

import (
	"github.com/holiman/uint256"

	"indexfund-api/pkg/registry"
)

var _ registry.Env = (*callEnv)(nil)

// callEnv is the registry.Env for one dispatched call.
type callEnv struct {
	caller    registry.Identity
	deposit   *uint256.Int
	byteCost  *uint256.Int
	timestamp uint64
}

func (e *callEnv) Predecessor() registry.Identity { return e.caller }

func (e *callEnv) AttachedDeposit() *uint256.Int {
	if e.deposit == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(e.deposit)
}

func (e *callEnv) StorageByteCost() *uint256.Int {
	if e.byteCost == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(e.byteCost)
}

func (e *callEnv) BlockTimestamp() uint64 { return e.timestamp }
