// Package vault provides share-based pooling of a fungible asset.
//
// The primary engine, Vault, issues a share asset against deposits of a base
// asset. The exchange rate is the exact rational totalBaseHeld /
// totalSharesOutstanding; reward deposits raise it for every holder without
// any per-account iteration. Conversions between base and shares are a
// single full-width multiply-then-divide, floored, so rounding always favors
// the vault over the individual depositor or withdrawer.
//
// Accrual is the alternative reward model: a 1:1 receipt token plus a
// second reward asset paid linearly per second, checkpointed per account.
// The two models are mutually exclusive per vault instance; they are
// separate types and never share custody.
package vault

import (
	"errors"
	"fmt"

	"github.com/stradax/go-ledger/ledger"
)

var (
	ErrInvalidAmount = errors.New("vault: amount must be positive")
)

// Vault pools a base asset and mints shares whose value tracks the pool.
type Vault struct {
	ledger  *ledger.Ledger
	base    ledger.AssetID
	share   ledger.AssetID
	custody ledger.AccountID

	// totalBaseHeld is maintained alongside the custody balance rather than
	// read from it, so donations sent directly to the custody account do not
	// silently change the rate.
	totalBaseHeld uint64
}

// Config describes a share vault.
type Config struct {
	Base    ledger.AssetID
	Share   ledger.AssetID
	Custody ledger.AccountID
}

// New creates an empty vault over the given ledger. Both assets must already
// be registered; the share asset should have no other minter.
func New(l *ledger.Ledger, cfg Config) (*Vault, error) {
	if cfg.Base == cfg.Share {
		return nil, fmt.Errorf("vault: base and share asset must be distinct")
	}
	for _, id := range []ledger.AssetID{cfg.Base, cfg.Share} {
		if _, err := l.AssetInfo(id); err != nil {
			return nil, err
		}
	}
	custody := cfg.Custody
	if custody == "" {
		custody = ledger.AccountID(fmt.Sprintf("custody:vault:%s", cfg.Share))
	}
	return &Vault{
		ledger:  l,
		base:    cfg.Base,
		share:   cfg.Share,
		custody: custody,
	}, nil
}

// Custody returns the vault-controlled account holding the base asset.
func (v *Vault) Custody() ledger.AccountID { return v.custody }

// Rate returns the exchange rate as an exact rational. An empty vault has
// rate 0/0.
func (v *Vault) Rate() Rate {
	return Rate{Base: v.totalBaseHeld, Shares: v.ledger.TotalSupply(v.share)}
}

// PreviewStake returns the shares a deposit of amount would mint right now.
func (v *Vault) PreviewStake(amount uint64) uint64 {
	shares := v.ledger.TotalSupply(v.share)
	if shares == 0 {
		return amount
	}
	return mulDiv(amount, shares, v.totalBaseHeld)
}

// PreviewUnstake returns the base units burning shareAmount would return.
func (v *Vault) PreviewUnstake(shareAmount uint64) uint64 {
	shares := v.ledger.TotalSupply(v.share)
	if shares == 0 {
		return 0
	}
	return mulDiv(shareAmount, v.totalBaseHeld, shares)
}

// Stake moves amount of base asset from caller into custody and mints the
// proportional number of shares. The first deposit into an empty vault mints
// 1:1, setting the initial rate at one.
func (v *Vault) Stake(caller ledger.AccountID, amount uint64) (minted uint64, err error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	outstanding := v.ledger.TotalSupply(v.share)
	if outstanding == 0 {
		minted = amount
	} else {
		// Floored: the depositor absorbs the rounding, never the pool.
		minted = mulDiv(amount, outstanding, v.totalBaseHeld)
	}

	if err := v.ledger.Transfer(v.base, caller, v.custody, amount); err != nil {
		return 0, err
	}
	v.totalBaseHeld += amount
	if minted > 0 {
		if err := v.ledger.Mint(v.share, caller, minted); err != nil {
			// Undo the custody leg; Mint on a registered share asset can
			// only fail on overflow.
			v.totalBaseHeld -= amount
			if uerr := v.ledger.Transfer(v.base, v.custody, caller, amount); uerr != nil {
				return 0, fmt.Errorf("vault: mint failed (%v) and unwind failed: %w", err, uerr)
			}
			return 0, err
		}
	}
	return minted, nil
}

// Unstake burns shareAmount of the caller's shares and pays out the
// proportional slice of the pool, floored in the pool's favor.
func (v *Vault) Unstake(caller ledger.AccountID, shareAmount uint64) (baseOut uint64, err error) {
	if shareAmount == 0 {
		return 0, ErrInvalidAmount
	}

	outstanding := v.ledger.TotalSupply(v.share)
	if outstanding == 0 {
		// Only reachable with a zero share balance, which Burn rejects.
		return 0, fmt.Errorf("%w: no shares outstanding", ledger.ErrInsufficientBalance)
	}
	baseOut = mulDiv(shareAmount, v.totalBaseHeld, outstanding)

	if err := v.ledger.Burn(v.share, caller, shareAmount); err != nil {
		return 0, err
	}
	if baseOut > 0 {
		if err := v.ledger.Transfer(v.base, v.custody, caller, baseOut); err != nil {
			// Custody always holds at least totalBaseHeld; restore shares if
			// a foreign mutation broke that assumption.
			if uerr := v.ledger.Mint(v.share, caller, shareAmount); uerr != nil {
				return 0, fmt.Errorf("vault: payout failed (%v) and unwind failed: %w", err, uerr)
			}
			return 0, err
		}
	}
	v.totalBaseHeld -= baseOut
	return baseOut, nil
}

// AddRewards moves amount of base asset from caller into custody without
// minting shares. This is the only operation that raises the exchange rate;
// any principal with sufficient balance may call it.
func (v *Vault) AddRewards(caller ledger.AccountID, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if err := v.ledger.Transfer(v.base, caller, v.custody, amount); err != nil {
		return err
	}
	v.totalBaseHeld += amount
	return nil
}

// TotalBaseHeld returns the pool size in base units.
func (v *Vault) TotalBaseHeld() uint64 { return v.totalBaseHeld }

// TotalShares returns the outstanding share supply.
func (v *Vault) TotalShares() uint64 { return v.ledger.TotalSupply(v.share) }
