// Package ledger provides a closed ledger of named fungible balances.
//
// A Ledger tracks any number of registered assets, each with an incrementally
// maintained total supply, and maps opaque account identifiers to non-negative
// integer balances in the asset's smallest indivisible unit. Mint, Burn and
// Transfer are the only balance mutators; every other component in the module
// moves value exclusively through them, which keeps the conservation invariant
// (supply == sum of balances) checkable after any operation.
package ledger

import (
	"fmt"
	"sort"
	"sync"
)

// AssetID identifies a fungible asset tracked by the ledger.
type AssetID string

// AccountID identifies a principal holding balances.
type AccountID string

// Asset holds per-asset metadata and its running total supply.
type Asset struct {
	ID       AssetID `json:"id"`
	Symbol   string  `json:"symbol,omitempty"`
	Decimals uint8   `json:"decimals"`
	Supply   uint64  `json:"supply"`
}

// Ledger is a single-writer balance store. All mutating and reading
// operations are serialized behind one mutex; an operation either applies
// atomically or fails before touching any balance.
type Ledger struct {
	mu       sync.Mutex
	assets   map[AssetID]*Asset
	balances map[AssetID]map[AccountID]uint64
	observer Observer
}

// New creates an empty ledger with no registered assets.
func New() *Ledger {
	return &Ledger{
		assets:   make(map[AssetID]*Asset),
		balances: make(map[AssetID]map[AccountID]uint64),
	}
}

// RegisterAsset adds an asset to the registry with zero supply.
func (l *Ledger) RegisterAsset(id AssetID, symbol string, decimals uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.assets[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, id)
	}
	l.assets[id] = &Asset{ID: id, Symbol: symbol, Decimals: decimals}
	l.balances[id] = make(map[AccountID]uint64)
	l.notify(Mutation{Kind: MutationRegister, Asset: id, Symbol: symbol, Decimals: decimals})
	return nil
}

// AssetInfo returns a copy of the asset's metadata.
func (l *Ledger) AssetInfo(id AssetID) (Asset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[id]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return *a, nil
}

// Mint creates amount units of asset in account, increasing total supply.
// The account is created lazily if it has never held a balance.
func (l *Ledger) Mint(asset AssetID, account AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if a.Supply+amount < a.Supply {
		return fmt.Errorf("%w: minting %d of %s", ErrBalanceOverflow, amount, asset)
	}

	l.balances[asset][account] += amount
	a.Supply += amount
	l.notify(Mutation{Kind: MutationMint, Asset: asset, To: account, Amount: amount})
	return nil
}

// Burn destroys amount units of asset held by account, decreasing total
// supply symmetrically. Fails with ErrInsufficientBalance if the account
// holds less than amount.
func (l *Ledger) Burn(asset AssetID, account AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	bal := l.balances[asset][account]
	if bal < amount {
		return fmt.Errorf("%w: account %s holds %d of %s, needs %d",
			ErrInsufficientBalance, account, bal, asset, amount)
	}

	l.setBalance(asset, account, bal-amount)
	a.Supply -= amount
	l.notify(Mutation{Kind: MutationBurn, Asset: asset, From: account, Amount: amount})
	return nil
}

// Transfer moves amount units of asset between accounts. Atomic: either both
// the debit and the credit apply or neither does.
func (l *Ledger) Transfer(asset AssetID, from, to AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transferLocked(asset, from, to, amount)
}

// transferLocked is Transfer with the ledger mutex already held, used to
// compose multi-leg movements that must be atomic as a group.
func (l *Ledger) transferLocked(asset AssetID, from, to AccountID, amount uint64) error {
	if _, ok := l.assets[asset]; !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	bal := l.balances[asset][from]
	if bal < amount {
		return fmt.Errorf("%w: account %s holds %d of %s, needs %d",
			ErrInsufficientBalance, from, bal, asset, amount)
	}
	if from == to {
		return nil
	}

	l.setBalance(asset, from, bal-amount)
	l.balances[asset][to] += amount
	l.notify(Mutation{Kind: MutationTransfer, Asset: asset, From: from, To: to, Amount: amount})
	return nil
}

// Exchange moves several legs atomically: every leg is validated before any
// balance changes, so a failure leaves the ledger untouched. Legs are applied
// in order against the balances as earlier legs leave them.
func (l *Ledger) Exchange(legs ...Leg) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Validate against a running view of available balances.
	avail := make(map[AssetID]map[AccountID]uint64)
	for _, leg := range legs {
		if _, ok := l.assets[leg.Asset]; !ok {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, leg.Asset)
		}
		if leg.Amount == 0 {
			return ErrInvalidAmount
		}
		if avail[leg.Asset] == nil {
			avail[leg.Asset] = make(map[AccountID]uint64)
		}
		src, ok := avail[leg.Asset][leg.From]
		if !ok {
			src = l.balances[leg.Asset][leg.From]
		}
		if src < leg.Amount {
			return fmt.Errorf("%w: account %s holds %d of %s, needs %d",
				ErrInsufficientBalance, leg.From, src, leg.Asset, leg.Amount)
		}
		avail[leg.Asset][leg.From] = src - leg.Amount
		dst, ok := avail[leg.Asset][leg.To]
		if !ok {
			dst = l.balances[leg.Asset][leg.To]
		}
		avail[leg.Asset][leg.To] = dst + leg.Amount
	}

	for _, leg := range legs {
		if err := l.transferLocked(leg.Asset, leg.From, leg.To, leg.Amount); err != nil {
			// Unreachable after validation; kept so a logic error cannot
			// silently corrupt the ledger.
			panic(err)
		}
	}
	return nil
}

// Leg is one debit/credit pair inside an Exchange.
type Leg struct {
	Asset  AssetID
	From   AccountID
	To     AccountID
	Amount uint64
}

// BalanceOf returns the account's balance of asset. A zero balance and a
// never-seen account are indistinguishable.
func (l *Ledger) BalanceOf(asset AssetID, account AccountID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[asset][account]
}

// TotalSupply returns the asset's incrementally maintained supply counter.
func (l *Ledger) TotalSupply(asset AssetID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.assets[asset]; ok {
		return a.Supply
	}
	return 0
}

// Assets returns the registered assets sorted by ID.
func (l *Ledger) Assets() []Asset {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Asset, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Holders returns the accounts with a nonzero balance of asset, sorted by ID.
func (l *Ledger) Holders(asset AssetID) []AccountID {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []AccountID
	for acct, bal := range l.balances[asset] {
		if bal > 0 {
			out = append(out, acct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// setBalance writes a balance, deleting the entry when it reaches zero so
// zero balances stay equivalent to non-existence.
func (l *Ledger) setBalance(asset AssetID, account AccountID, bal uint64) {
	if bal == 0 {
		delete(l.balances[asset], account)
		return
	}
	l.balances[asset][account] = bal
}
