// Package engine binds a ledger, a collateral mint and any number of vaults
// behind a single serialized command surface.
//
// Every command executes as one atomic step relative to all other commands on
// the same engine; a failed precondition returns a typed error from the
// underlying package with no partial state. When a journal is attached the
// engine observes the ledger and records every primitive mutation under the
// label of the command that caused it. Logging is zerolog, disabled unless a
// logger is supplied.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stradax/go-ledger/journal"
	"github.com/stradax/go-ledger/ledger"
	"github.com/stradax/go-ledger/mint"
	"github.com/stradax/go-ledger/vault"
)

var (
	ErrUnknownVault   = errors.New("engine: unknown vault")
	ErrNoMintEngine   = errors.New("engine: no collateral mint configured")
	ErrVaultNameTaken = errors.New("engine: vault name already in use")
)

// Engine is the single-writer command surface over one ledger.
type Engine struct {
	mu sync.Mutex

	ledger   *ledger.Ledger
	mint     *mint.Engine
	vaults   map[string]*vault.Vault
	accruals map[string]*vault.Accrual

	journal *journal.Journal
	log     zerolog.Logger

	// action labels the command currently executing, for the observer.
	action string
}

// New creates an engine over the given ledger and installs itself as the
// ledger's observer.
func New(l *ledger.Ledger) *Engine {
	e := &Engine{
		ledger:   l,
		vaults:   make(map[string]*vault.Vault),
		accruals: make(map[string]*vault.Accrual),
		log:      zerolog.Nop(),
	}
	l.SetObserver(e)
	return e
}

// Ledger returns the underlying ledger for queries.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// WithJournal attaches a journal; every subsequent primitive mutation is
// recorded.
func (e *Engine) WithJournal(j *journal.Journal) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journal = j
	return e
}

// WithLogger sets the structured logger.
func (e *Engine) WithLogger(log zerolog.Logger) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = log
	return e
}

// WithMint configures the collateral mint engine.
func (e *Engine) WithMint(m *mint.Engine) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mint = m
	return e
}

// AddVault registers a share vault under a name.
func (e *Engine) AddVault(name string, v *vault.Vault) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkName(name); err != nil {
		return err
	}
	e.vaults[name] = v
	return nil
}

// AddAccrual registers a linear-accrual engine under a name. A name refers
// to either a share vault or an accrual engine, never both: the two reward
// models are mutually exclusive per vault instance.
func (e *Engine) AddAccrual(name string, a *vault.Accrual) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkName(name); err != nil {
		return err
	}
	e.accruals[name] = a
	return nil
}

func (e *Engine) checkName(name string) error {
	if _, ok := e.vaults[name]; ok {
		return fmt.Errorf("%w: %s", ErrVaultNameTaken, name)
	}
	if _, ok := e.accruals[name]; ok {
		return fmt.Errorf("%w: %s", ErrVaultNameTaken, name)
	}
	return nil
}

// Mutated implements ledger.Observer, journaling each primitive under the
// executing command's label.
func (e *Engine) Mutated(m ledger.Mutation) {
	if e.journal != nil {
		e.journal.Record(e.action, m)
	}
}

// run executes fn as one serialized command labeled action.
func (e *Engine) run(action string, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.action = action
	err := fn()
	e.action = ""

	if err != nil {
		e.log.Debug().Str("action", action).Err(err).Msg("command rejected")
		return err
	}
	e.log.Info().Str("action", action).Msg("command applied")
	return nil
}

// RegisterAsset registers an asset on the ledger.
func (e *Engine) RegisterAsset(id ledger.AssetID, symbol string, decimals uint8) error {
	return e.run("register_asset", func() error {
		return e.ledger.RegisterAsset(id, symbol, decimals)
	})
}

// Issue mints units of an asset to an account. This is the provisioning
// operation a deployment layer uses to seed balances.
func (e *Engine) Issue(asset ledger.AssetID, to ledger.AccountID, amount uint64) error {
	return e.run("issue", func() error {
		return e.ledger.Mint(asset, to, amount)
	})
}

// Transfer moves units between accounts.
func (e *Engine) Transfer(asset ledger.AssetID, from, to ledger.AccountID, amount uint64) error {
	return e.run("transfer", func() error {
		return e.ledger.Transfer(asset, from, to, amount)
	})
}

// DepositCollateral submits a paired collateral deposit to the mint engine.
func (e *Engine) DepositCollateral(caller ledger.AccountID, amountA, amountB uint64) error {
	return e.run("deposit_collateral", func() error {
		if e.mint == nil {
			return ErrNoMintEngine
		}
		return e.mint.DepositCollateral(caller, amountA, amountB)
	})
}

// Stake deposits into the named vault (share-price or accrual).
func (e *Engine) Stake(name string, caller ledger.AccountID, amount uint64) (minted uint64, err error) {
	err = e.run("stake", func() error {
		if v, ok := e.vaults[name]; ok {
			minted, err = v.Stake(caller, amount)
			return err
		}
		if a, ok := e.accruals[name]; ok {
			minted = amount
			return a.Stake(caller, amount)
		}
		return fmt.Errorf("%w: %s", ErrUnknownVault, name)
	})
	if err != nil {
		return 0, err
	}
	return minted, nil
}

// Unstake withdraws from the named vault.
func (e *Engine) Unstake(name string, caller ledger.AccountID, shareAmount uint64) (out uint64, err error) {
	err = e.run("unstake", func() error {
		if v, ok := e.vaults[name]; ok {
			out, err = v.Unstake(caller, shareAmount)
			return err
		}
		if a, ok := e.accruals[name]; ok {
			out = shareAmount
			return a.Unstake(caller, shareAmount)
		}
		return fmt.Errorf("%w: %s", ErrUnknownVault, name)
	})
	if err != nil {
		return 0, err
	}
	return out, nil
}

// AddRewards tops up the named share vault's pool without minting shares.
func (e *Engine) AddRewards(name string, caller ledger.AccountID, amount uint64) error {
	return e.run("add_rewards", func() error {
		v, ok := e.vaults[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownVault, name)
		}
		return v.AddRewards(caller, amount)
	})
}

// Claim pays out accrued rewards from the named accrual engine.
func (e *Engine) Claim(name string, caller ledger.AccountID) (paid uint64, err error) {
	err = e.run("claim", func() error {
		a, ok := e.accruals[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownVault, name)
		}
		paid, err = a.Claim(caller)
		return err
	})
	if err != nil {
		return 0, err
	}
	return paid, nil
}

// BalanceOf queries an account balance.
func (e *Engine) BalanceOf(asset ledger.AssetID, account ledger.AccountID) uint64 {
	return e.ledger.BalanceOf(asset, account)
}

// TotalSupply queries an asset's supply.
func (e *Engine) TotalSupply(asset ledger.AssetID) uint64 {
	return e.ledger.TotalSupply(asset)
}

// Rate returns the named share vault's exchange rate.
func (e *Engine) Rate(name string) (vault.Rate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vaults[name]
	if !ok {
		return vault.Rate{}, fmt.Errorf("%w: %s", ErrUnknownVault, name)
	}
	return v.Rate(), nil
}

// Earned returns the accrued rewards for an account on the named accrual
// engine.
func (e *Engine) Earned(name string, account ledger.AccountID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.accruals[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVault, name)
	}
	return a.Earned(account), nil
}
