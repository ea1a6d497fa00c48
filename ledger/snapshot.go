package ledger

import (
	"fmt"
	"sort"
)

// Snapshot is a point-in-time deep copy of a ledger's state, safe to read
// and hash while the live ledger keeps mutating.
type Snapshot struct {
	// Assets holds per-asset metadata including the supply counter.
	Assets []Asset `json:"assets"`

	// Balances maps asset -> account -> balance. Zero balances are omitted.
	Balances map[AssetID]map[AccountID]uint64 `json:"balances"`
}

// Snapshot captures the current state of the ledger.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{
		Balances: make(map[AssetID]map[AccountID]uint64, len(l.balances)),
	}
	for _, a := range l.assets {
		snap.Assets = append(snap.Assets, *a)
	}
	sortAssets(snap.Assets)
	for asset, accounts := range l.balances {
		m := make(map[AccountID]uint64, len(accounts))
		for acct, bal := range accounts {
			if bal > 0 {
				m[acct] = bal
			}
		}
		snap.Balances[asset] = m
	}
	return snap
}

// Clone creates a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	clone := &Snapshot{
		Assets:   append([]Asset(nil), s.Assets...),
		Balances: make(map[AssetID]map[AccountID]uint64, len(s.Balances)),
	}
	for asset, accounts := range s.Balances {
		m := make(map[AccountID]uint64, len(accounts))
		for acct, bal := range accounts {
			m[acct] = bal
		}
		clone.Balances[asset] = m
	}
	return clone
}

// SupplyOf returns the supply counter recorded for asset, or zero.
func (s *Snapshot) SupplyOf(asset AssetID) uint64 {
	for _, a := range s.Assets {
		if a.ID == asset {
			return a.Supply
		}
	}
	return 0
}

// CheckConservation verifies the closed-ledger invariant: for every asset
// the supply counter equals the sum of account balances. Returns
// ErrConservationViolated naming the first offending asset.
func (s *Snapshot) CheckConservation() error {
	for _, a := range s.Assets {
		var sum uint64
		for _, bal := range s.Balances[a.ID] {
			sum += bal
		}
		if sum != a.Supply {
			return fmt.Errorf("%w: asset %s supply=%d sum=%d",
				ErrConservationViolated, a.ID, a.Supply, sum)
		}
	}
	return nil
}

// CheckConservation audits the live ledger.
func (l *Ledger) CheckConservation() error {
	return l.Snapshot().CheckConservation()
}

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
}
