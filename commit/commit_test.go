package commit

import (
	"testing"

	"github.com/stradax/go-ledger/ledger"
)

func buildLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	if err := l.RegisterAsset("sxt", "sxt", 18); err != nil {
		t.Fatalf("RegisterAsset: %v", err)
	}
	if err := l.Mint("sxt", "alice", 1000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := l.Transfer("sxt", "alice", "bob", 250); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	return l
}

func TestEqualStatesCommitEqually(t *testing.T) {
	a, err := Ledger(buildLedger(t))
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	b, err := Ledger(buildLedger(t))
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	if a != b {
		t.Errorf("identical states commit differently: %s vs %s", a, b)
	}
	if a == (Commitment{}) {
		t.Error("commitment should not be zero")
	}
}

func TestBalanceChangeChangesCommitment(t *testing.T) {
	l := buildLedger(t)
	before, err := Ledger(l)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}

	if err := l.Transfer("sxt", "bob", "alice", 1); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	after, err := Ledger(l)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	if before == after {
		t.Error("balance change did not change the commitment")
	}
}

func TestCommitmentIndependentOfHistory(t *testing.T) {
	// Same final balances via different operation orders.
	l1 := ledger.New()
	l1.RegisterAsset("sxt", "sxt", 18)
	l1.Mint("sxt", "alice", 100)
	l1.Mint("sxt", "bob", 200)

	l2 := ledger.New()
	l2.RegisterAsset("sxt", "sxt", 18)
	l2.Mint("sxt", "bob", 200)
	l2.Mint("sxt", "alice", 300)
	l2.Burn("sxt", "alice", 200)

	a, err := Ledger(l1)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	b, err := Ledger(l2)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	if a != b {
		t.Errorf("same balances must commit equally: %s vs %s", a, b)
	}
}
