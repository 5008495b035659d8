// Package engine implements the ledger's compliance-and-mutation core. Every
// public operation evaluates its guards in a fixed order (initialization,
// authorization, pause, identity, freeze, supply/balance) and only then
// mutates the aggregate. A failing guard aborts the whole operation with no
// state touched.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"trellis/internal/audit"
	"trellis/internal/identity"
	"trellis/internal/platform/metrics"
	"trellis/internal/token/access"
	"trellis/internal/token/freeze"
	"trellis/internal/token/pause"
	"trellis/internal/token/state"
	"trellis/internal/token/supply"
	"trellis/pkg/domain"
	dErrors "trellis/pkg/domain-errors"
)

// AuditPublisher emits events after a mutation commits.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Engine owns the state aggregate exclusively. A single lock serializes
// guard evaluation and mutation, so no operation ever observes another's
// partial effects. Batches mutate a clone and commit by pointer swap.
type Engine struct {
	mu sync.RWMutex
	st *state.State

	gate    identity.Gate
	audit   AuditPublisher
	log     *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Engine)

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(e *Engine) {
		e.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func New(gate identity.Gate, opts ...Option) (*Engine, error) {
	if gate == nil {
		return nil, fmt.Errorf("identity gate is required")
	}
	e := &Engine{
		st:     state.New(),
		gate:   gate,
		log:    slog.Default(),
		tracer: otel.Tracer("trellis/token/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Init sets metadata and the supply cap exactly once. The caller becomes the
// owner and the ledger starts paused: transfers stay blocked until the owner
// explicitly unpauses, while issuance is possible immediately.
func (e *Engine) Init(ctx context.Context, caller domain.Address, name, symbol string, decimals uint8, maxSupply uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.init")
	defer span.End()

	e.mu.Lock()
	evs, err := e.initLocked(caller, name, symbol, decimals, maxSupply)
	e.mu.Unlock()

	e.observe("init", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

func (e *Engine) initLocked(caller domain.Address, name, symbol string, decimals uint8, maxSupply uint64) ([]audit.Event, error) {
	if e.st.Initialized {
		return nil, dErrors.New(dErrors.CodeAlreadyInitialized, "token is already initialized")
	}
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner address is required")
	}
	if name == "" || symbol == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token name and symbol are required")
	}
	if maxSupply == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "max supply must be positive")
	}

	e.st.Meta = state.Metadata{Name: name, Symbol: symbol, Decimals: decimals}
	e.st.MaxSupply = maxSupply
	e.st.Owner = caller
	e.st.Paused = true
	e.st.Initialized = true

	return []audit.Event{{
		Action: audit.ActionInitialized,
		Actor:  caller,
		Amount: maxSupply,
	}}, nil
}

// Mint issues amount new tokens to an eligible holder. Owner or agent only;
// not gated by pause.
func (e *Engine) Mint(ctx context.Context, caller, to domain.Address, amount uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.mint")
	defer span.End()

	e.mu.Lock()
	evs, err := e.mint(ctx, e.st, caller, to, amount)
	e.updateGauges()
	e.mu.Unlock()

	e.observe("mint", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

func (e *Engine) mint(ctx context.Context, st *state.State, caller, to domain.Address, amount uint64) ([]audit.Event, error) {
	if err := requireInitialized(st); err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAgent(st, caller); err != nil {
		return nil, err
	}
	if to.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipient address is required")
	}
	eligible, err := e.gate.IsEligible(ctx, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity gate lookup failed")
	}
	if !eligible {
		return nil, dErrors.Newf(dErrors.CodeInvalidInvestor, "address %s is not a verified investor", to)
	}
	if err := supply.Mint(st, to, amount); err != nil {
		return nil, err
	}
	return []audit.Event{{
		Action:  audit.ActionMint,
		Actor:   caller,
		Address: to,
		Amount:  amount,
	}}, nil
}

// Burn destroys amount tokens held by from. Owner or agent only; not gated
// by pause. If the burn undercuts a partial freeze, the frozen reserve is
// clamped to the remaining balance and the release is reported.
func (e *Engine) Burn(ctx context.Context, caller, from domain.Address, amount uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.burn")
	defer span.End()

	e.mu.Lock()
	evs, err := e.burn(e.st, caller, from, amount)
	e.updateGauges()
	e.mu.Unlock()

	e.observe("burn", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

func (e *Engine) burn(st *state.State, caller, from domain.Address, amount uint64) ([]audit.Event, error) {
	if err := requireInitialized(st); err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAgent(st, caller); err != nil {
		return nil, err
	}
	if from.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "holder address is required")
	}
	released, err := supply.Burn(st, from, amount)
	if err != nil {
		return nil, err
	}
	evs := []audit.Event{{
		Action:  audit.ActionBurn,
		Actor:   caller,
		Address: from,
		Amount:  amount,
	}}
	if released > 0 {
		evs = append(evs, audit.Event{
			Action:  audit.ActionTokensUnfrozen,
			Actor:   caller,
			Address: from,
			Amount:  released,
		})
	}
	return evs, nil
}

// Transfer moves amount from the caller to an eligible recipient, subject to
// the pause switch and both parties' freeze status.
func (e *Engine) Transfer(ctx context.Context, caller, to domain.Address, amount uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.transfer")
	defer span.End()

	e.mu.Lock()
	evs, err := e.transfer(ctx, e.st, caller, to, amount)
	e.updateGauges()
	e.mu.Unlock()

	e.observe("transfer", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

func (e *Engine) transfer(ctx context.Context, st *state.State, from, to domain.Address, amount uint64) ([]audit.Event, error) {
	if err := requireInitialized(st); err != nil {
		return nil, err
	}
	if from.IsZero() || to.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "sender and recipient addresses are required")
	}
	if err := pause.RequireUnpaused(st); err != nil {
		return nil, err
	}
	if err := freeze.RequireNotFrozen(st, from, to); err != nil {
		return nil, err
	}
	eligible, err := e.gate.IsEligible(ctx, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity gate lookup failed")
	}
	if !eligible {
		return nil, dErrors.Newf(dErrors.CodeIneligibleRecipient, "recipient %s is not a verified investor", to)
	}
	if err := freeze.RequireAvailable(st, from, amount); err != nil {
		return nil, err
	}
	supply.Move(st, from, to, amount)
	return []audit.Event{{
		Action:       audit.ActionTransfer,
		Actor:        from,
		Address:      from,
		Counterparty: to,
		Amount:       amount,
	}}, nil
}

// BatchMint applies Mint once per address/amount pair, in order, as one
// atomic unit: if any element fails, no element's mutation is retained.
func (e *Engine) BatchMint(ctx context.Context, caller domain.Address, addrs []domain.Address, amounts []uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.batch_mint")
	defer span.End()

	e.mu.Lock()
	evs, err := e.batch(ctx, addrs, amounts, func(ctx context.Context, work *state.State, addr domain.Address, amount uint64) ([]audit.Event, error) {
		return e.mint(ctx, work, caller, addr, amount)
	})
	e.updateGauges()
	e.mu.Unlock()

	e.observe("batch_mint", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

// BatchTransfer applies Transfer once per recipient/amount pair, in order,
// as one atomic unit.
func (e *Engine) BatchTransfer(ctx context.Context, caller domain.Address, recipients []domain.Address, amounts []uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.batch_transfer")
	defer span.End()

	e.mu.Lock()
	evs, err := e.batch(ctx, recipients, amounts, func(ctx context.Context, work *state.State, to domain.Address, amount uint64) ([]audit.Event, error) {
		return e.transfer(ctx, work, caller, to, amount)
	})
	e.updateGauges()
	e.mu.Unlock()

	e.observe("batch_transfer", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

type batchItem func(ctx context.Context, work *state.State, addr domain.Address, amount uint64) ([]audit.Event, error)

// batch runs every item against a clone of the aggregate and swaps the clone
// in only when all items succeed. Caller must hold the write lock.
func (e *Engine) batch(ctx context.Context, addrs []domain.Address, amounts []uint64, item batchItem) ([]audit.Event, error) {
	if len(addrs) != len(amounts) {
		return nil, dErrors.Newf(dErrors.CodeArrayLengthMismatch,
			"%d addresses, %d amounts", len(addrs), len(amounts))
	}
	work := e.st.Clone()
	var evs []audit.Event
	for i := range addrs {
		itemEvs, err := item(ctx, work, addrs[i], amounts[i])
		if err != nil {
			return nil, err
		}
		evs = append(evs, itemEvs...)
	}
	e.st = work
	return evs, nil
}

// FreezePartialTokens reserves amount tokens of addr's balance. Owner or
// agent only. Freezing more than the held balance is rejected, not clamped.
func (e *Engine) FreezePartialTokens(ctx context.Context, caller, addr domain.Address, amount uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.freeze_partial")
	defer span.End()

	e.mu.Lock()
	evs, err := e.freezePartial(e.st, caller, addr, amount, true)
	e.mu.Unlock()

	e.observe("freeze_partial", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

// UnfreezePartialTokens releases amount previously reserved tokens.
func (e *Engine) UnfreezePartialTokens(ctx context.Context, caller, addr domain.Address, amount uint64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.unfreeze_partial")
	defer span.End()

	e.mu.Lock()
	evs, err := e.freezePartial(e.st, caller, addr, amount, false)
	e.mu.Unlock()

	e.observe("unfreeze_partial", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

func (e *Engine) freezePartial(st *state.State, caller, addr domain.Address, amount uint64, freezing bool) ([]audit.Event, error) {
	if err := requireInitialized(st); err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAgent(st, caller); err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "holder address is required")
	}
	action := audit.ActionTokensFrozen
	var err error
	if freezing {
		err = freeze.FreezePartial(st, addr, amount)
	} else {
		action = audit.ActionTokensUnfrozen
		err = freeze.UnfreezePartial(st, addr, amount)
	}
	if err != nil {
		return nil, err
	}
	return []audit.Event{{
		Action:  action,
		Actor:   caller,
		Address: addr,
		Amount:  amount,
	}}, nil
}

// SetAddressFrozen sets or clears the full-freeze flag for addr. Owner or
// agent only. A fully frozen wallet can neither send nor receive.
func (e *Engine) SetAddressFrozen(ctx context.Context, caller, addr domain.Address, frozen bool) error {
	ctx, span := e.tracer.Start(ctx, "ledger.set_address_frozen")
	defer span.End()

	e.mu.Lock()
	evs, err := e.setAddressFrozen(e.st, caller, addr, frozen)
	e.mu.Unlock()

	e.observe("set_address_frozen", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

func (e *Engine) setAddressFrozen(st *state.State, caller, addr domain.Address, frozen bool) ([]audit.Event, error) {
	if err := requireInitialized(st); err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAgent(st, caller); err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "holder address is required")
	}
	freeze.SetAddressFrozen(st, addr, frozen)
	action := audit.ActionAddressFrozen
	if !frozen {
		action = audit.ActionAddressUnfrozen
	}
	return []audit.Event{{
		Action:  action,
		Actor:   caller,
		Address: addr,
	}}, nil
}

// Pause blocks all transfers. Owner only. Idempotent at the state level but
// still authorization-checked.
func (e *Engine) Pause(ctx context.Context, caller domain.Address) error {
	return e.setPaused(ctx, caller, true)
}

// Unpause re-enables transfers. Owner only.
func (e *Engine) Unpause(ctx context.Context, caller domain.Address) error {
	return e.setPaused(ctx, caller, false)
}

func (e *Engine) setPaused(ctx context.Context, caller domain.Address, paused bool) error {
	op, action := "pause", audit.ActionPaused
	if !paused {
		op, action = "unpause", audit.ActionUnpaused
	}
	ctx, span := e.tracer.Start(ctx, "ledger."+op)
	defer span.End()

	e.mu.Lock()
	var evs []audit.Event
	err := requireInitialized(e.st)
	if err == nil {
		err = access.RequireOwner(e.st, caller)
	}
	if err == nil && pause.Set(e.st, paused) {
		evs = append(evs, audit.Event{Action: action, Actor: caller})
	}
	e.mu.Unlock()

	e.observe(op, err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

// AddAgent grants operational privileges. Owner only.
func (e *Engine) AddAgent(ctx context.Context, caller, addr domain.Address) error {
	return e.setAgent(ctx, caller, addr, true)
}

// RemoveAgent revokes operational privileges. Owner only.
func (e *Engine) RemoveAgent(ctx context.Context, caller, addr domain.Address) error {
	return e.setAgent(ctx, caller, addr, false)
}

func (e *Engine) setAgent(ctx context.Context, caller, addr domain.Address, granting bool) error {
	op, action := "add_agent", audit.ActionAgentAdded
	if !granting {
		op, action = "remove_agent", audit.ActionAgentRemoved
	}
	ctx, span := e.tracer.Start(ctx, "ledger."+op)
	defer span.End()

	e.mu.Lock()
	var evs []audit.Event
	err := requireInitialized(e.st)
	if err == nil {
		err = access.RequireOwner(e.st, caller)
	}
	if err == nil && addr.IsZero() {
		err = dErrors.New(dErrors.CodeInvalidInput, "agent address is required")
	}
	if err == nil {
		changed := false
		if granting {
			changed = access.AddAgent(e.st, addr)
		} else {
			changed = access.RemoveAgent(e.st, addr)
		}
		if changed {
			evs = append(evs, audit.Event{Action: action, Actor: caller, Address: addr})
		}
	}
	e.mu.Unlock()

	e.observe(op, err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

// TransferOwnership reassigns the owner role. Owner only.
func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error {
	ctx, span := e.tracer.Start(ctx, "ledger.transfer_ownership")
	defer span.End()

	e.mu.Lock()
	var evs []audit.Event
	err := requireInitialized(e.st)
	if err == nil {
		err = access.RequireOwner(e.st, caller)
	}
	if err == nil && newOwner.IsZero() {
		err = dErrors.New(dErrors.CodeInvalidInput, "new owner address is required")
	}
	if err == nil {
		access.TransferOwnership(e.st, newOwner)
		evs = append(evs, audit.Event{
			Action:       audit.ActionOwnershipTransferred,
			Actor:        caller,
			Address:      newOwner,
			Counterparty: caller,
		})
	}
	e.mu.Unlock()

	e.observe("transfer_ownership", err)
	if err != nil {
		return err
	}
	e.emit(ctx, evs)
	return nil
}

func requireInitialized(st *state.State) error {
	if !st.Initialized {
		return dErrors.New(dErrors.CodeNotInitialized, "token is not initialized")
	}
	return nil
}

// updateGauges refreshes supply metrics. Caller must hold the write lock.
func (e *Engine) updateGauges() {
	if e.metrics == nil {
		return
	}
	e.metrics.SetSupply(e.st.TotalSupply)
	e.metrics.SetHolders(len(e.st.Accounts))
}

func (e *Engine) observe(operation string, err error) {
	if e.metrics != nil {
		e.metrics.ObserveOperation(operation, err)
	}
	if err != nil {
		e.log.Debug("operation rejected", "operation", operation, "error", err)
	}
}

// emit reports committed mutations. Emission failures are logged, never
// propagated: the mutation has already committed.
func (e *Engine) emit(ctx context.Context, evs []audit.Event) {
	if e.audit == nil {
		return
	}
	for _, ev := range evs {
		if err := e.audit.Emit(ctx, ev); err != nil {
			e.log.Warn("audit emit failed", "action", ev.Action, "error", err)
		}
	}
}
