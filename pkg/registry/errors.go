package registry

import "errors"

var (
	// ErrInvalidArgument is returned when the registry is created with a zero interval.
	ErrInvalidArgument = errors.New("registry: invalid rebalance interval")
	// ErrAlreadyRegistered is returned on any registration after the first.
	ErrAlreadyRegistered = errors.New("registry: controller already registered")
	// ErrInsufficientPayment is returned when the registration deposit is below the storage threshold.
	ErrInsufficientPayment = errors.New("registry: insufficient storage deposit")
	// ErrNotRegistered is returned when a mutation arrives before any controller exists.
	ErrNotRegistered = errors.New("registry: controller not registered")
	// ErrUnauthorized is returned when the caller is not the registered controller.
	ErrUnauthorized = errors.New("registry: unauthorized")
	// ErrInvalidWeightSum is returned when a batch would leave weights not summing to 100%.
	ErrInvalidWeightSum = errors.New("registry: final weights must sum to 100%")
)
