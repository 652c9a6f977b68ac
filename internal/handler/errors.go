package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"indexfund-api/internal/types"
	hostpkg "indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

// ErrBadRequest marks request bodies that could not be parsed.
var ErrBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}

// StatusFor maps registry and host errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, registry.ErrInvalidArgument),
		errors.Is(err, registry.ErrInvalidWeightSum),
		errors.Is(err, hostpkg.ErrInvalidDeposit),
		errors.Is(err, hostpkg.ErrUnknownMethod):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, hostpkg.ErrInvalidSignature):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrAlreadyRegistered),
		errors.Is(err, hostpkg.ErrAlreadyInitialized),
		errors.Is(err, hostpkg.ErrStaleNonce):
		return http.StatusConflict
	case errors.Is(err, registry.ErrNotRegistered):
		return http.StatusPreconditionFailed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders errors as types.ErrorResponse. Install it with
// httpx.SetErrorHandlerCtx.
func ErrorHandler(ctx context.Context, err error) (int, any) {
	status := StatusFor(err)
	kind := hostpkg.ErrorKind(err)
	if errors.Is(err, ErrBadRequest) {
		kind = "bad_request"
	}
	if status >= http.StatusInternalServerError {
		logx.WithContext(ctx).Errorf("registry api: %v", err)
	}
	return status, &types.ErrorResponse{Code: status, Kind: kind, Message: err.Error()}
}

// InstallErrorHandler wires ErrorHandler into httpx.
func InstallErrorHandler() {
	httpx.SetErrorHandlerCtx(ErrorHandler)
}
