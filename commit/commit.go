// Package commit derives succinct commitments over ledger snapshots.
//
// A commitment is a MiMC hash (over the BN254 scalar field) of the sorted
// (asset, account, balance) triples plus per-asset supplies. Two snapshots
// commit equally exactly when their balances and supplies agree, which makes
// commitments a cheap state-equality oracle for journal replay and audit
// checkpointing.
package commit

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/stradax/go-ledger/ledger"
)

// Commitment is a 32-byte digest of a ledger snapshot.
type Commitment [32]byte

// String returns the hex encoding of the commitment.
func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// Snapshot commits to a ledger snapshot. The encoding is deterministic:
// assets sorted by ID, holders sorted within each asset.
func Snapshot(snap *ledger.Snapshot) (Commitment, error) {
	h := mimc.NewMiMC()

	for _, a := range snap.Assets {
		if err := writeField(h, fieldFromString(string(a.ID))); err != nil {
			return Commitment{}, err
		}
		if err := writeField(h, fieldFromUint(a.Supply)); err != nil {
			return Commitment{}, err
		}

		accounts := make([]ledger.AccountID, 0, len(snap.Balances[a.ID]))
		for acct := range snap.Balances[a.ID] {
			accounts = append(accounts, acct)
		}
		sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })

		for _, acct := range accounts {
			if err := writeField(h, fieldFromString(string(acct))); err != nil {
				return Commitment{}, err
			}
			if err := writeField(h, fieldFromUint(snap.Balances[a.ID][acct])); err != nil {
				return Commitment{}, err
			}
		}
	}

	var c Commitment
	copy(c[:], h.Sum(nil))
	return c, nil
}

// Ledger commits to the live ledger's current state.
func Ledger(l *ledger.Ledger) (Commitment, error) {
	return Snapshot(l.Snapshot())
}

type fieldWriter interface {
	Write(p []byte) (n int, err error)
}

// writeField feeds one canonical field element into the hasher.
func writeField(h fieldWriter, e fr.Element) error {
	b := e.Bytes()
	if _, err := h.Write(b[:]); err != nil {
		return fmt.Errorf("commit: hashing element: %w", err)
	}
	return nil
}

// fieldFromString maps an arbitrary-length identifier into the scalar field
// by hashing it first; the reduction is deterministic, which is all a
// commitment needs.
func fieldFromString(s string) fr.Element {
	sum := sha256.Sum256([]byte(s))
	var e fr.Element
	e.SetBytes(sum[:])
	return e
}

func fieldFromUint(v uint64) fr.Element {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	var e fr.Element
	e.SetBytes(buf[:])
	return e
}
