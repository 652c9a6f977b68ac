package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/pkg/journal"
	"indexfund-api/pkg/registry"
)

// methodDeploy labels the init call in logs and metrics.
const methodDeploy = "new"

// Info summarises registry metadata for operators.
type Info struct {
	RegistryID        string             `json:"registry_id"`
	Deployed          bool               `json:"deployed"`
	Controller        *registry.Identity `json:"controller,omitempty"`
	RebalanceInterval uint64             `json:"rebalance_interval"`
	LastRebalance     uint64             `json:"last_rebalance"`
	AssetCount        int                `json:"asset_count"`
}

// Locker excludes other processes hosting the same registry while a call
// runs. The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, registryID string) (unlock func(), err error)
}

// Runtime hosts one registry: it serializes calls, supplies each call's
// environment and persists state after every successful mutation.
type Runtime struct {
	cfg     *Config
	store   Store
	journal *journal.Writer
	locker  Locker
	nowFn   func() time.Time

	mu sync.Mutex
}

// Option customises a Runtime.
type Option func(*Runtime)

// WithJournal records every committed weight batch.
func WithJournal(w *journal.Writer) Option {
	return func(r *Runtime) { r.journal = w }
}

// WithLocker adds cross-process exclusion around mutating calls.
func WithLocker(l Locker) Option {
	return func(r *Runtime) { r.locker = l }
}

// WithClock overrides the host clock.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) {
		if now != nil {
			r.nowFn = now
		}
	}
}

// NewRuntime constructs a runtime for cfg.RegistryID backed by store.
func NewRuntime(cfg *Config, store Store, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("host: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("host: store is nil")
	}
	rt := &Runtime{
		cfg:   cfg,
		store: store,
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

// RegistryID returns the hosted registry's identifier.
func (rt *Runtime) RegistryID() string { return rt.cfg.RegistryID }

// Deploy initialises the registry with an explicit rebalance interval.
func (rt *Runtime) Deploy(ctx context.Context, rebalanceInterval uint64) (err error) {
	started := time.Now()
	defer func() { observeCall(methodDeploy, started, err) }()

	rt.mu.Lock()
	defer rt.mu.Unlock()
	unlock, err := rt.lockRegistry(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	_, _, found, err := rt.load(ctx)
	if err != nil {
		return err
	}
	if found {
		return ErrAlreadyInitialized
	}
	reg, err := registry.New(rebalanceInterval)
	if err != nil {
		return err
	}
	if err := rt.store.Save(ctx, rt.cfg.RegistryID, reg.State()); err != nil {
		return fmt.Errorf("host: save state: %w", err)
	}
	logx.WithContext(ctx).Infof("registry %s deployed with rebalance_interval=%d", rt.cfg.RegistryID, rebalanceInterval)
	return nil
}

// Execute dispatches an authenticated call.
func (rt *Runtime) Execute(ctx context.Context, call Call) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.execute(ctx, call, 0)
}

// ExecuteSigned verifies a signed envelope and dispatches the call as the
// recovered address. Nonces must strictly increase per caller; the last one
// accepted is stored with the registry state.
func (rt *Runtime) ExecuteSigned(ctx context.Context, sc SignedCall) (registry.Identity, error) {
	deposit, err := ParseDeposit(sc.Deposit)
	if err != nil {
		observeCall(sc.Action.Method, time.Now(), err)
		return "", err
	}
	digest, err := CallDigest(rt.cfg.RegistryID, sc.Action, deposit, sc.Nonce)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		observeCall(sc.Action.Method, time.Now(), err)
		return "", err
	}
	caller, err := RecoverCaller(digest, sc.Signature)
	if err != nil {
		observeCall(sc.Action.Method, time.Now(), err)
		return "", err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	return caller, rt.execute(ctx, Call{Action: sc.Action, Caller: caller, Deposit: deposit}, sc.Nonce)
}

// execute runs one call; rt.mu must be held. A positive nonce is checked
// against the stored nonces and committed with the resulting state.
func (rt *Runtime) execute(ctx context.Context, call Call, nonce int64) (err error) {
	method := call.Action.Method
	started := time.Now()
	defer func() {
		observeCall(method, started, err)
		if err != nil {
			logx.WithContext(ctx).Errorf("registry %s: %s by %s failed: %v", rt.cfg.RegistryID, method, call.Caller, err)
		}
	}()

	unlock, err := rt.lockRegistry(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	reg, nonces, _, err := rt.load(ctx)
	if err != nil {
		return err
	}
	if nonce > 0 {
		if last, ok := nonces[call.Caller]; ok && nonce <= last {
			return fmt.Errorf("%w: %d <= %d", ErrStaleNonce, nonce, last)
		}
	}

	if err := rt.dispatch(reg, call); err != nil {
		// The controller's nonce is spent even on failure, so a rejected
		// batch cannot be replayed once the portfolio has moved on. Other
		// callers' failures write nothing.
		if nonce > 0 && isController(reg, call.Caller) {
			rt.consumeNonce(ctx, reg, nonces, call.Caller, nonce)
		}
		return err
	}

	if nonce > 0 {
		nonces[call.Caller] = nonce
	}
	state := reg.State()
	if len(nonces) > 0 {
		state.Nonces = nonces
	}
	if err := rt.store.Save(ctx, rt.cfg.RegistryID, state); err != nil {
		return fmt.Errorf("host: save state: %w", err)
	}
	assetsGauge.Set(float64(len(state.Holdings)), rt.cfg.RegistryID)

	switch method {
	case MethodRegisterController:
		logx.WithContext(ctx).Infof("registry %s: controller registered %s", rt.cfg.RegistryID, call.Action.Controller)
	case MethodUpdateWeights:
		logx.WithContext(ctx).Infof("registry %s: updated weights: %v", rt.cfg.RegistryID, call.Action.Updates)
		rt.recordBatch(ctx, call, nonce, reg.Weights())
	}
	return nil
}

func (rt *Runtime) dispatch(reg *registry.Registry, call Call) error {
	env := &callEnv{
		caller:    call.Caller,
		deposit:   call.Deposit,
		byteCost:  rt.cfg.StorageByteCost,
		timestamp: uint64(rt.nowFn().UnixNano()),
	}
	switch call.Action.Method {
	case MethodRegisterController:
		if strings.TrimSpace(string(call.Action.Controller)) == "" {
			return fmt.Errorf("%w: controller identity is empty", registry.ErrInvalidArgument)
		}
		return reg.RegisterController(call.Action.Controller, env)
	case MethodUpdateWeights:
		return reg.UpdateWeights(call.Action.Updates, env)
	default:
		return fmt.Errorf("%w %q", ErrUnknownMethod, call.Action.Method)
	}
}

// consumeNonce persists nonce for caller over the unchanged registry state.
// A failed call's error is what the caller sees, so a save failure is only
// logged.
func (rt *Runtime) consumeNonce(ctx context.Context, reg *registry.Registry, nonces map[registry.Identity]int64, caller registry.Identity, nonce int64) {
	nonces[caller] = nonce
	state := reg.State()
	state.Nonces = nonces
	if err := rt.store.Save(ctx, rt.cfg.RegistryID, state); err != nil {
		logx.WithContext(ctx).Errorf("registry %s: persist nonce %d for %s: %v", rt.cfg.RegistryID, nonce, caller, err)
	}
}

func isController(reg *registry.Registry, caller registry.Identity) bool {
	c, ok := reg.Controller()
	return ok && c == caller
}

// recordBatch journals a committed batch. Journal failures are logged only;
// the state is already durable.
func (rt *Runtime) recordBatch(ctx context.Context, call Call, nonce int64, weights []registry.AssetWeight) {
	if rt.journal == nil {
		return
	}
	rec := &journal.BatchRecord{
		Timestamp:  rt.nowFn(),
		RegistryID: rt.cfg.RegistryID,
		Caller:     call.Caller,
		Updates:    call.Action.Updates,
		Weights:    weights,
		Nonce:      nonce,
	}
	if _, err := rt.journal.WriteBatch(rec); err != nil {
		logx.WithContext(ctx).Errorf("registry %s: journal batch: %v", rt.cfg.RegistryID, err)
	}
}

func (rt *Runtime) lockRegistry(ctx context.Context) (func(), error) {
	if rt.locker == nil {
		return func() {}, nil
	}
	unlock, err := rt.locker.Lock(ctx, rt.cfg.RegistryID)
	if err != nil {
		return nil, fmt.Errorf("host: lock registry: %w", err)
	}
	return unlock, nil
}

// load reads the registry and a private copy of its stored nonces; a
// registry that was never persisted reads as the default registry.
func (rt *Runtime) load(ctx context.Context) (*registry.Registry, map[registry.Identity]int64, bool, error) {
	state, err := rt.store.Load(ctx, rt.cfg.RegistryID)
	if errors.Is(err, ErrStateNotFound) {
		return registry.NewDefault(), make(map[registry.Identity]int64), false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("host: load state: %w", err)
	}
	reg, err := registry.FromState(*state)
	if err != nil {
		return nil, nil, false, fmt.Errorf("host: decode state: %w", err)
	}
	nonces := make(map[registry.Identity]int64, len(state.Nonces))
	for caller, n := range state.Nonces {
		nonces[caller] = n
	}
	return reg, nonces, true, nil
}

// Weights returns the weights view.
func (rt *Runtime) Weights(ctx context.Context) ([]registry.AssetWeight, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	reg, _, _, err := rt.load(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Weights(), nil
}

// Assets returns the asset identifiers view.
func (rt *Runtime) Assets(ctx context.Context) ([]registry.AssetID, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	reg, _, _, err := rt.load(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Assets(), nil
}

// Info returns registry metadata.
func (rt *Runtime) Info(ctx context.Context) (*Info, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	reg, _, found, err := rt.load(ctx)
	if err != nil {
		return nil, err
	}
	info := &Info{
		RegistryID:        rt.cfg.RegistryID,
		Deployed:          found,
		RebalanceInterval: reg.RebalanceInterval(),
		LastRebalance:     reg.LastRebalance(),
		AssetCount:        len(reg.Assets()),
	}
	if c, ok := reg.Controller(); ok {
		info.Controller = &c
	}
	return info, nil
}
