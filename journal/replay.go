package journal

import (
	"fmt"

	"github.com/stradax/go-ledger/ledger"
)

// Replay rebuilds a fresh ledger by re-executing the journaled primitives in
// sequence order. A journal produced by observing a live ledger replays to
// exactly the same balances and supplies.
func Replay(entries []Entry) (*ledger.Ledger, error) {
	l := ledger.New()
	for _, e := range entries {
		var err error
		switch e.Kind {
		case ledger.MutationRegister:
			err = l.RegisterAsset(e.Asset, e.Symbol, e.Decimals)
		case ledger.MutationMint:
			err = l.Mint(e.Asset, e.To, e.Amount)
		case ledger.MutationBurn:
			err = l.Burn(e.Asset, e.From, e.Amount)
		case ledger.MutationTransfer:
			err = l.Transfer(e.Asset, e.From, e.To, e.Amount)
		default:
			err = fmt.Errorf("unknown mutation kind %q", e.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("replay seq %d: %w", e.Seq, err)
		}
	}
	return l, nil
}
