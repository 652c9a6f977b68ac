package host

import (
	"errors"

	"indexfund-api/pkg/registry"
)

var (
	// ErrStateNotFound is returned by a Store that holds no state for a registry.
	ErrStateNotFound = errors.New("host: registry state not found")
	// ErrAlreadyInitialized is returned by Deploy when state already exists.
	ErrAlreadyInitialized = errors.New("host: registry already initialized")
	// ErrInvalidSignature is returned when a signed call does not verify.
	ErrInvalidSignature = errors.New("host: invalid call signature")
	// ErrStaleNonce is returned when a signed call reuses an old nonce.
	ErrStaleNonce = errors.New("host: stale call nonce")
	// ErrUnknownMethod is returned for actions the registry does not expose.
	ErrUnknownMethod = errors.New("host: unknown method")
	// ErrInvalidDeposit is returned when a deposit amount cannot be parsed.
	ErrInvalidDeposit = errors.New("host: invalid deposit")
)

var errorKinds = []struct {
	kind string
	err  error
}{
	{"invalid_argument", registry.ErrInvalidArgument},
	{"already_registered", registry.ErrAlreadyRegistered},
	{"insufficient_payment", registry.ErrInsufficientPayment},
	{"not_registered", registry.ErrNotRegistered},
	{"unauthorized", registry.ErrUnauthorized},
	{"invalid_weight_sum", registry.ErrInvalidWeightSum},
	{"already_initialized", ErrAlreadyInitialized},
	{"invalid_signature", ErrInvalidSignature},
	{"stale_nonce", ErrStaleNonce},
	{"unknown_method", ErrUnknownMethod},
	{"invalid_deposit", ErrInvalidDeposit},
	{"state_not_found", ErrStateNotFound},
}

// ErrorKind classifies err into a stable snake_case kind: "ok" for nil,
// "error" for anything unrecognised. Metrics and the HTTP API share it.
func ErrorKind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "error"
}

// KindError returns the sentinel for a kind produced by ErrorKind, or nil.
func KindError(kind string) error {
	for _, k := range errorKinds {
		if k.kind == kind {
			return k.err
		}
	}
	return nil
}
