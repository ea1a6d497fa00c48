// Package mint provides a dual-collateral synthetic asset engine.
//
// The engine accepts paired deposits of two distinct collateral assets and
// mints a synthetic asset 1:1 against the deposit. The pairing rule is an
// injected RateSource; the default requires the two legs to be equal, which
// makes the synthetic supply self-describing: outstanding supply always
// equals the custody balance of either collateral leg. There is no
// redemption path; collateral withdrawal is deliberately absent.
package mint

import (
	"errors"
	"fmt"

	"github.com/stradax/go-ledger/ledger"
)

var (
	ErrCollateralRatioMismatch = errors.New("mint: collateral ratio mismatch")
	ErrInvalidAmount           = errors.New("mint: amounts must be positive")
	ErrSameAsset               = errors.New("mint: collateral assets must be distinct")
)

// RateSource decides whether a pair of collateral amounts satisfies the
// required ratio. It stands in for a price oracle: an implementation may
// weight the legs by an external conversion rate.
type RateSource interface {
	// Accept returns nil if the pair (amountA, amountB) is acceptable.
	Accept(amountA, amountB uint64) error
}

// EqualAmounts is the default RateSource: both legs must match exactly.
type EqualAmounts struct{}

func (EqualAmounts) Accept(amountA, amountB uint64) error {
	if amountA != amountB {
		return fmt.Errorf("%w: %d != %d", ErrCollateralRatioMismatch, amountA, amountB)
	}
	return nil
}

// Engine maintains a synthetic asset fully collateralized by two backing
// assets held in a dedicated custody account.
type Engine struct {
	ledger      *ledger.Ledger
	collateralA ledger.AssetID
	collateralB ledger.AssetID
	synthetic   ledger.AssetID
	custody     ledger.AccountID
	rate        RateSource
}

// Config describes a mint engine. Rate defaults to EqualAmounts when nil.
type Config struct {
	CollateralA ledger.AssetID
	CollateralB ledger.AssetID
	Synthetic   ledger.AssetID
	Custody     ledger.AccountID
	Rate        RateSource
}

// New creates a mint engine over the given ledger. All three assets must
// already be registered.
func New(l *ledger.Ledger, cfg Config) (*Engine, error) {
	if cfg.CollateralA == cfg.CollateralB {
		return nil, ErrSameAsset
	}
	for _, id := range []ledger.AssetID{cfg.CollateralA, cfg.CollateralB, cfg.Synthetic} {
		if _, err := l.AssetInfo(id); err != nil {
			return nil, err
		}
	}
	rate := cfg.Rate
	if rate == nil {
		rate = EqualAmounts{}
	}
	custody := cfg.Custody
	if custody == "" {
		custody = ledger.AccountID(fmt.Sprintf("custody:mint:%s", cfg.Synthetic))
	}
	return &Engine{
		ledger:      l,
		collateralA: cfg.CollateralA,
		collateralB: cfg.CollateralB,
		synthetic:   cfg.Synthetic,
		custody:     custody,
		rate:        rate,
	}, nil
}

// Custody returns the engine-controlled account holding the collateral.
func (e *Engine) Custody() ledger.AccountID { return e.custody }

// DepositCollateral moves amountA of collateral A and amountB of collateral B
// from caller into custody and mints amountA units of the synthetic asset to
// caller. The pairing rule is checked first, then both legs are validated and
// applied atomically; a failure leaves every balance unchanged.
func (e *Engine) DepositCollateral(caller ledger.AccountID, amountA, amountB uint64) error {
	if amountA == 0 || amountB == 0 {
		return ErrInvalidAmount
	}
	if err := e.rate.Accept(amountA, amountB); err != nil {
		return err
	}

	err := e.ledger.Exchange(
		ledger.Leg{Asset: e.collateralA, From: caller, To: e.custody, Amount: amountA},
		ledger.Leg{Asset: e.collateralB, From: caller, To: e.custody, Amount: amountB},
	)
	if err != nil {
		return err
	}
	if err := e.ledger.Mint(e.synthetic, caller, amountA); err != nil {
		// Return the collateral; Mint on a registered asset can only fail
		// on supply overflow.
		uerr := e.ledger.Exchange(
			ledger.Leg{Asset: e.collateralA, From: e.custody, To: caller, Amount: amountA},
			ledger.Leg{Asset: e.collateralB, From: e.custody, To: caller, Amount: amountB},
		)
		if uerr != nil {
			return fmt.Errorf("mint: synthetic mint failed (%v) and unwind failed: %w", err, uerr)
		}
		return err
	}
	return nil
}

// Collateralization reports the custody balances of both legs and the
// synthetic supply. Under the equal-amount rule the supply equals the
// smaller leg.
func (e *Engine) Collateralization() (custodyA, custodyB, supply uint64) {
	return e.ledger.BalanceOf(e.collateralA, e.custody),
		e.ledger.BalanceOf(e.collateralB, e.custody),
		e.ledger.TotalSupply(e.synthetic)
}
