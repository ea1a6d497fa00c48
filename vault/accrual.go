package vault

import (
	"errors"
	"fmt"
	"time"

	"github.com/stradax/go-ledger/ledger"
)

var (
	ErrNoRewardFunds = errors.New("vault: reward custody underfunded")
)

// Clock supplies the current time; injected so accrual is deterministic in
// tests and replay.
type Clock func() time.Time

// Accrual is the linear reward model: staking mints a 1:1 receipt token and
// a distinct reward asset accrues at a fixed rate per second, split across
// stakers by staked share. Accrued rewards are checkpointed on every stake,
// unstake and claim.
type Accrual struct {
	ledger        *ledger.Ledger
	staked        ledger.AssetID
	receipt       ledger.AssetID
	reward        ledger.AssetID
	custody       ledger.AccountID
	rewardCustody ledger.AccountID
	ratePerSecond uint64
	clock         Clock

	totalStaked uint64
	accounts    map[ledger.AccountID]*checkpoint
}

// checkpoint records an account's accrual state at its last interaction.
type checkpoint struct {
	staked  uint64
	accrued uint64
	last    time.Time
}

// AccrualConfig describes a linear-accrual staking engine.
type AccrualConfig struct {
	Staked        ledger.AssetID   // asset users stake
	Receipt       ledger.AssetID   // 1:1 receipt token
	Reward        ledger.AssetID   // asset paid out as rewards
	Custody       ledger.AccountID
	RewardCustody ledger.AccountID // pre-funded source of reward payments
	RatePerSecond uint64           // reward units per second across all stakers
	Clock         Clock            // defaults to time.Now
}

// NewAccrual creates a linear-accrual engine over the given ledger.
func NewAccrual(l *ledger.Ledger, cfg AccrualConfig) (*Accrual, error) {
	for _, id := range []ledger.AssetID{cfg.Staked, cfg.Receipt, cfg.Reward} {
		if _, err := l.AssetInfo(id); err != nil {
			return nil, err
		}
	}
	if cfg.Staked == cfg.Receipt {
		return nil, fmt.Errorf("vault: staked and receipt asset must be distinct")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	custody := cfg.Custody
	if custody == "" {
		custody = ledger.AccountID(fmt.Sprintf("custody:accrual:%s", cfg.Receipt))
	}
	rewardCustody := cfg.RewardCustody
	if rewardCustody == "" {
		rewardCustody = ledger.AccountID(fmt.Sprintf("custody:rewards:%s", cfg.Receipt))
	}
	return &Accrual{
		ledger:        l,
		staked:        cfg.Staked,
		receipt:       cfg.Receipt,
		reward:        cfg.Reward,
		custody:       custody,
		rewardCustody: rewardCustody,
		ratePerSecond: cfg.RatePerSecond,
		clock:         clock,
		accounts:      make(map[ledger.AccountID]*checkpoint),
	}, nil
}

// RewardCustody returns the account rewards are paid from. It must be funded
// by the operator; Claim fails once it runs dry.
func (a *Accrual) RewardCustody() ledger.AccountID { return a.rewardCustody }

// Stake moves amount of the staked asset into custody and mints the receipt
// token 1:1. The caller's accrual is checkpointed first, so past rewards
// are unaffected by the balance change.
func (a *Accrual) Stake(caller ledger.AccountID, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if err := a.ledger.Transfer(a.staked, caller, a.custody, amount); err != nil {
		return err
	}
	if err := a.ledger.Mint(a.receipt, caller, amount); err != nil {
		if uerr := a.ledger.Transfer(a.staked, a.custody, caller, amount); uerr != nil {
			return fmt.Errorf("vault: receipt mint failed (%v) and unwind failed: %w", err, uerr)
		}
		return err
	}

	cp := a.touch(caller)
	cp.staked += amount
	a.totalStaked += amount
	return nil
}

// Unstake burns the caller's receipt tokens, returns the staked asset and
// pays out all accrued rewards.
func (a *Accrual) Unstake(caller ledger.AccountID, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	// Receipts are transferable on the ledger, but only the account that
	// staked can unwind its own position.
	if staked := a.Staked(caller); staked < amount {
		return fmt.Errorf("%w: account %s staked %d, needs %d",
			ledger.ErrInsufficientBalance, caller, staked, amount)
	}

	// Roll accrual forward and verify the reward leg is payable before any
	// balance moves; a rejected unstake leaves every balance unchanged.
	cp := a.touch(caller)
	if bal := a.ledger.BalanceOf(a.reward, a.rewardCustody); bal < cp.accrued {
		return fmt.Errorf("%w: custody holds %d, accrued %d", ErrNoRewardFunds, bal, cp.accrued)
	}

	if err := a.ledger.Burn(a.receipt, caller, amount); err != nil {
		return err
	}
	if err := a.ledger.Transfer(a.staked, a.custody, caller, amount); err != nil {
		if uerr := a.ledger.Mint(a.receipt, caller, amount); uerr != nil {
			return fmt.Errorf("vault: payout failed (%v) and unwind failed: %w", err, uerr)
		}
		return err
	}

	cp.staked -= amount
	a.totalStaked -= amount
	return a.payout(caller, cp)
}

// Claim pays out the caller's accrued rewards without unstaking.
func (a *Accrual) Claim(caller ledger.AccountID) (uint64, error) {
	cp := a.touch(caller)
	accrued := cp.accrued
	if accrued == 0 {
		return 0, nil
	}
	return accrued, a.payout(caller, cp)
}

// Earned returns the rewards the account would receive if it claimed now.
func (a *Accrual) Earned(account ledger.AccountID) uint64 {
	cp, ok := a.accounts[account]
	if !ok {
		return 0
	}
	return cp.accrued + a.pending(cp, a.clock())
}

// Staked returns the account's currently staked amount.
func (a *Accrual) Staked(account ledger.AccountID) uint64 {
	if cp, ok := a.accounts[account]; ok {
		return cp.staked
	}
	return 0
}

// TotalStaked returns the sum of all staked balances.
func (a *Accrual) TotalStaked() uint64 { return a.totalStaked }

// touch rolls the account's accrual forward to now and returns its
// checkpoint, creating it on first contact.
func (a *Accrual) touch(account ledger.AccountID) *checkpoint {
	now := a.clock()
	cp, ok := a.accounts[account]
	if !ok {
		cp = &checkpoint{last: now}
		a.accounts[account] = cp
		return cp
	}
	cp.accrued += a.pending(cp, now)
	cp.last = now
	return cp
}

// pending computes rewards earned since the last checkpoint:
// ratePerSecond * elapsed * staked / totalStaked.
func (a *Accrual) pending(cp *checkpoint, now time.Time) uint64 {
	if cp.staked == 0 || a.totalStaked == 0 {
		return 0
	}
	elapsed := now.Sub(cp.last)
	if elapsed <= 0 {
		return 0
	}
	secs := uint64(elapsed / time.Second)
	return mulDiv3(a.ratePerSecond, secs, cp.staked, a.totalStaked)
}

func (a *Accrual) payout(to ledger.AccountID, cp *checkpoint) error {
	amount := cp.accrued
	if amount == 0 {
		return nil
	}
	if err := a.ledger.Transfer(a.reward, a.rewardCustody, to, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrNoRewardFunds, err)
	}
	cp.accrued = 0
	return nil
}
