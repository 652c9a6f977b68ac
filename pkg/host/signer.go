package host

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"indexfund-api/pkg/registry"
)

// Signer signs call digests on behalf of an identity.
type Signer interface {
	Sign(digest []byte) (*Signature, error)
	Identity() registry.Identity
}

// PrivateKeySigner signs digests with an ECDSA private key.
type PrivateKeySigner struct {
	privateKey *ecdsa.PrivateKey
	identity   registry.Identity
}

// NewPrivateKeySigner constructs a signer from a hex-encoded private key string.
func NewPrivateKeySigner(privateKeyHex string) (*PrivateKeySigner, error) {
	keyHex := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if keyHex == "" {
		return nil, errors.New("host: empty private key")
	}
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("host: decode private key: %w", err)
	}
	return &PrivateKeySigner{
		privateKey: key,
		identity:   registry.Identity(strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())),
	}, nil
}

// GenerateSigner creates a signer with a fresh random key.
func GenerateSigner() (*PrivateKeySigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("host: generate key: %w", err)
	}
	return NewPrivateKeySigner(hex.EncodeToString(crypto.FromECDSA(key)))
}

// PrivateKeyHex returns the hex encoded private key.
func (s *PrivateKeySigner) PrivateKeyHex() string {
	return "0x" + hex.EncodeToString(crypto.FromECDSA(s.privateKey))
}

// Sign produces an ECDSA signature for a 32-byte digest.
func (s *PrivateKeySigner) Sign(digest []byte) (*Signature, error) {
	if s == nil || s.privateKey == nil {
		return nil, errors.New("host: signer not initialised")
	}
	if len(digest) != 32 {
		return nil, fmt.Errorf("host: expected 32-byte digest, got %d bytes", len(digest))
	}
	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("host: sign digest: %w", err)
	}
	return &Signature{
		R: "0x" + hex.EncodeToString(sig[:32]),
		S: "0x" + hex.EncodeToString(sig[32:64]),
		V: int(sig[64]) + 27,
	}, nil
}

// Identity returns the address the signer speaks for.
func (s *PrivateKeySigner) Identity() registry.Identity {
	if s == nil {
		return ""
	}
	return s.identity
}

// SignCall builds a SignedCall for the registry. A non-positive nonce is
// replaced by the current unix milliseconds.
func SignCall(signer Signer, registryID string, action Action, deposit *uint256.Int, nonce int64) (*SignedCall, error) {
	if signer == nil {
		return nil, errors.New("host: signer required")
	}
	if nonce <= 0 {
		nonce = time.Now().UnixMilli()
	}
	if deposit == nil {
		deposit = new(uint256.Int)
	}
	digest, err := CallDigest(registryID, action, deposit, nonce)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &SignedCall{
		Action:    action,
		Deposit:   deposit.Dec(),
		Nonce:     nonce,
		Signature: *sig,
	}, nil
}
