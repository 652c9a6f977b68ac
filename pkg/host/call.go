package host

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/vmihailenco/msgpack/v5"

	"indexfund-api/pkg/registry"
)

const (
	// MethodRegisterController registers the registry's controller.
	MethodRegisterController = "register_controller"
	// MethodUpdateWeights applies a batch of weight updates.
	MethodUpdateWeights = "update_weights"
)

// Action is the method and arguments of a registry call.
type Action struct {
	Method     string                 `json:"method" msgpack:"method"`
	Controller registry.Identity      `json:"controller,omitempty" msgpack:"controller,omitempty"`
	Updates    []registry.AssetWeight `json:"updates,omitempty" msgpack:"updates,omitempty"`
}

// Call is an authenticated action ready for dispatch.
type Call struct {
	Action  Action
	Caller  registry.Identity
	Deposit *uint256.Int
}

// Signature is an secp256k1 signature split into its components.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V int    `json:"v"`
}

// SignedCall is the wire envelope for a call authenticated by its signature.
// The caller is the address recovered from the signature.
type SignedCall struct {
	Action    Action    `json:"action"`
	Deposit   string    `json:"deposit,omitempty"`
	Nonce     int64     `json:"nonce"`
	Signature Signature `json:"signature"`
}

// ParseDeposit reads a decimal deposit; empty means zero.
func ParseDeposit(raw string) (*uint256.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidDeposit, raw, err)
	}
	return v, nil
}

// CallDigest is the 32-byte hash a caller signs:
// keccak256(registryID || msgpack(action) || deposit[32] || nonce[8]).
func CallDigest(registryID string, action Action, deposit *uint256.Int, nonce int64) ([]byte, error) {
	if nonce <= 0 {
		return nil, fmt.Errorf("host: nonce must be positive")
	}
	packed, err := msgpack.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("host: msgpack encode action: %w", err)
	}
	if deposit == nil {
		deposit = new(uint256.Int)
	}
	depositBytes := deposit.Bytes32()

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], uint64(nonce))

	payload := make([]byte, 0, len(registryID)+len(packed)+len(depositBytes)+len(nonceBytes))
	payload = append(payload, registryID...)
	payload = append(payload, packed...)
	payload = append(payload, depositBytes[:]...)
	payload = append(payload, nonceBytes[:]...)
	return crypto.Keccak256(payload), nil
}

// RecoverCaller returns the lowercase hex address that produced sig over digest.
func RecoverCaller(digest []byte, sig Signature) (registry.Identity, error) {
	r, err := decodeComponent(sig.R)
	if err != nil {
		return "", fmt.Errorf("%w: r: %v", ErrInvalidSignature, err)
	}
	s, err := decodeComponent(sig.S)
	if err != nil {
		return "", fmt.Errorf("%w: s: %v", ErrInvalidSignature, err)
	}
	if sig.V != 27 && sig.V != 28 {
		return "", fmt.Errorf("%w: v must be 27 or 28, got %d", ErrInvalidSignature, sig.V)
	}
	raw := make([]byte, 0, crypto.SignatureLength)
	raw = append(raw, r...)
	raw = append(raw, s...)
	raw = append(raw, byte(sig.V-27))

	pub, err := crypto.SigToPub(digest, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return registry.Identity(strings.ToLower(crypto.PubkeyToAddress(*pub).Hex())), nil
}

func decodeComponent(v string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(v), "0x"))
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	return b, nil
}
