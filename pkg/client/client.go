// Package client talks to the registry HTTP API: it signs mutating calls with
// a local key and decodes the read views.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"indexfund-api/internal/types"
	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

const (
	apiPrefix = "/api/v1/registry"

	defaultHTTPTimeout  = 30 * time.Second
	defaultRetryBackoff = 200 * time.Millisecond
	maxRetryAttempts    = 3
)

// APIError is a non-2xx response from the registry API. It unwraps to the
// matching registry or host sentinel when the server reports a known kind.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry api: status %d (%s): %s", e.Status, e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return host.KindError(e.Kind) }

// Client calls one registry server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     host.Signer
	logger     *log.Logger
	clock      func() time.Time

	// mu guards registryID and lastNonce; it is never held across a request.
	mu         sync.Mutex
	registryID string
	lastNonce  int64
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithSigner sets the key used for register and update calls.
func WithSigner(signer host.Signer) Option {
	return func(c *Client) { c.signer = signer }
}

// WithRegistryID pins the registry id signatures are bound to. Without it the
// client asks the server once.
func WithRegistryID(id string) Option {
	return func(c *Client) { c.registryID = strings.TrimSpace(id) }
}

// WithLogger attaches a custom logger (defaults to log.Default()).
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for nonces.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     log.Default(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deploy initialises the registry.
func (c *Client) Deploy(ctx context.Context, rebalanceInterval uint64) (*types.DeployResponse, error) {
	var resp types.DeployResponse
	if err := c.post(ctx, "/deploy", types.DeployRequest{RebalanceInterval: rebalanceInterval}, &resp); err != nil {
		return nil, err
	}
	c.adoptRegistryID(resp.RegistryId)
	return &resp, nil
}

// RegisterController registers controller, attaching deposit. A nil deposit
// attaches the server's advertised registration deposit.
func (c *Client) RegisterController(ctx context.Context, controller registry.Identity, deposit *uint256.Int) (*types.CallResponse, error) {
	if deposit == nil {
		info, err := c.Info(ctx)
		if err != nil {
			return nil, err
		}
		deposit, err = uint256.FromDecimal(info.RegistrationDeposit)
		if err != nil {
			return nil, fmt.Errorf("registry client: decode registration deposit %q: %w", info.RegistrationDeposit, err)
		}
	}
	return c.Call(ctx, host.Action{Method: host.MethodRegisterController, Controller: controller}, deposit)
}

// UpdateWeights submits one all-or-nothing batch.
func (c *Client) UpdateWeights(ctx context.Context, updates []registry.AssetWeight) (*types.CallResponse, error) {
	return c.Call(ctx, host.Action{Method: host.MethodUpdateWeights, Updates: updates}, nil)
}

// Call signs action with the configured signer and submits it.
func (c *Client) Call(ctx context.Context, action host.Action, deposit *uint256.Int) (*types.CallResponse, error) {
	if c.signer == nil {
		return nil, errors.New("registry client: signer required for calls")
	}
	registryID, err := c.resolveRegistryID(ctx)
	if err != nil {
		return nil, err
	}
	sc, err := host.SignCall(c.signer, registryID, action, deposit, c.nextNonce())
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, sc)
}

// Submit posts an already signed call.
func (c *Client) Submit(ctx context.Context, sc *host.SignedCall) (*types.CallResponse, error) {
	var resp types.CallResponse
	if err := c.post(ctx, "/call", sc, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Weights returns the weights view.
func (c *Client) Weights(ctx context.Context) ([]registry.AssetWeight, error) {
	var resp types.WeightsResponse
	if err := c.get(ctx, "/weights", &resp); err != nil {
		return nil, err
	}
	out := make([]registry.AssetWeight, 0, len(resp.Weights))
	for _, w := range resp.Weights {
		out = append(out, registry.AssetWeight{AssetID: registry.AssetID(w.AssetId), Weight: w.Weight})
	}
	return out, nil
}

// Assets returns the asset identifiers view.
func (c *Client) Assets(ctx context.Context) ([]registry.AssetID, error) {
	var resp types.AssetsResponse
	if err := c.get(ctx, "/assets", &resp); err != nil {
		return nil, err
	}
	out := make([]registry.AssetID, 0, len(resp.Assets))
	for _, a := range resp.Assets {
		out = append(out, registry.AssetID(a))
	}
	return out, nil
}

// Info returns registry metadata.
func (c *Client) Info(ctx context.Context) (*types.InfoResponse, error) {
	var resp types.InfoResponse
	if err := c.get(ctx, "/info", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegistryID returns the registry id signatures are bound to, or "" before it
// is known.
func (c *Client) RegistryID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registryID
}

func (c *Client) resolveRegistryID(ctx context.Context) (string, error) {
	if id := c.RegistryID(); id != "" {
		return id, nil
	}
	info, err := c.Info(ctx)
	if err != nil {
		return "", fmt.Errorf("registry client: resolve registry id: %w", err)
	}
	return c.adoptRegistryID(info.RegistryId), nil
}

// adoptRegistryID sets the registry id unless one is already known and
// returns the id in effect. The first id wins.
func (c *Client) adoptRegistryID(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registryID == "" {
		c.registryID = id
	}
	return c.registryID
}

// nextNonce is the clock in milliseconds, bumped to stay strictly increasing.
func (c *Client) nextNonce() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.clock().UnixMilli()
	if n <= c.lastNonce {
		n = c.lastNonce + 1
	}
	c.lastNonce = n
	return n
}

// get retries transport failures and 5xx responses with backoff.
func (c *Client) get(ctx context.Context, path string, result any) error {
	backoff := defaultRetryBackoff
	var lastErr error
	for attempt := 0; attempt < maxRetryAttempts; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPrefix+path, nil)
		if err != nil {
			return fmt.Errorf("registry client: build request: %w", err)
		}
		lastErr = c.do(httpReq, result)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return lastErr
		}
		c.logger.Printf("registry client: GET %s attempt %d failed: %v", path, attempt+1, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return lastErr
}

// post is not retried: a resent call would be rejected as a stale nonce.
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("registry client: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("registry client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	err = c.do(httpReq, result)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Client) do(httpReq *http.Request, result any) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("registry client: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var payload types.ErrorResponse
		if json.Unmarshal(body, &payload) == nil && payload.Kind != "" {
			apiErr.Kind = payload.Kind
			apiErr.Message = payload.Message
		}
		return apiErr
	}
	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("registry client: decode response: %w", err)
		}
	}
	return nil
}
