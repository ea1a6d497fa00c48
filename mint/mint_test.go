package mint

import (
	"errors"
	"math"
	"testing"

	"github.com/stradax/go-ledger/ledger"
)

func newEngine(t *testing.T) (*ledger.Ledger, *Engine) {
	t.Helper()
	l := ledger.New()
	for _, id := range []ledger.AssetID{"blx", "strada", "sxt"} {
		if err := l.RegisterAsset(id, string(id), 18); err != nil {
			t.Fatalf("RegisterAsset(%s): %v", id, err)
		}
	}
	e, err := New(l, Config{
		CollateralA: "blx",
		CollateralB: "strada",
		Synthetic:   "sxt",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Mint("blx", "user", 1000); err != nil {
		t.Fatalf("fund blx: %v", err)
	}
	if err := l.Mint("strada", "user", 1000); err != nil {
		t.Fatalf("fund strada: %v", err)
	}
	return l, e
}

func TestDepositCollateral(t *testing.T) {
	l, e := newEngine(t)

	if err := e.DepositCollateral("user", 100, 100); err != nil {
		t.Fatalf("DepositCollateral: %v", err)
	}

	if got := l.BalanceOf("sxt", "user"); got != 100 {
		t.Errorf("user should hold 100 sxt, got %d", got)
	}
	if got := l.BalanceOf("blx", "user"); got != 900 {
		t.Errorf("user should hold 900 blx, got %d", got)
	}
	custA, custB, supply := e.Collateralization()
	if custA != 100 || custB != 100 || supply != 100 {
		t.Errorf("collateralization = (%d, %d, %d), want (100, 100, 100)", custA, custB, supply)
	}
	if err := l.CheckConservation(); err != nil {
		t.Errorf("conservation: %v", err)
	}
}

func TestUnequalCollateralRejected(t *testing.T) {
	l, e := newEngine(t)

	err := e.DepositCollateral("user", 100, 90)
	if !errors.Is(err, ErrCollateralRatioMismatch) {
		t.Fatalf("expected ErrCollateralRatioMismatch, got %v", err)
	}
	if got := l.BalanceOf("sxt", "user"); got != 0 {
		t.Errorf("no sxt should be minted, got %d", got)
	}
	if got := l.BalanceOf("blx", "user"); got != 1000 {
		t.Errorf("blx must be untouched, got %d", got)
	}
}

func TestInsufficientCollateral(t *testing.T) {
	l, e := newEngine(t)

	// user only holds 1000 of each leg.
	err := e.DepositCollateral("user", 1001, 1001)
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if l.BalanceOf("blx", "user") != 1000 || l.BalanceOf("strada", "user") != 1000 {
		t.Error("failed deposit must leave both collateral balances unchanged")
	}

	// One-sided shortfall: drain strada so only the second leg fails, then
	// verify the first leg did not move.
	if err := l.Burn("strada", "user", 950); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	err = e.DepositCollateral("user", 100, 100)
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := l.BalanceOf("blx", "user"); got != 1000 {
		t.Errorf("blx leg leaked into custody, user holds %d", got)
	}
}

func TestDepositUnwindsOnMintOverflow(t *testing.T) {
	l, e := newEngine(t)

	// Push the synthetic supply to the ceiling so the deposit's mint
	// overflows after the collateral legs have moved.
	if err := l.Mint("sxt", "whale", math.MaxUint64); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	err := e.DepositCollateral("user", 100, 100)
	if !errors.Is(err, ledger.ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	if got := l.BalanceOf("blx", "user"); got != 1000 {
		t.Errorf("blx must be returned, user holds %d", got)
	}
	if got := l.BalanceOf("strada", "user"); got != 1000 {
		t.Errorf("strada must be returned, user holds %d", got)
	}
	custA, custB, _ := e.Collateralization()
	if custA != 0 || custB != 0 {
		t.Errorf("custody must be empty after unwind, got (%d, %d)", custA, custB)
	}
	if err := l.CheckConservation(); err != nil {
		t.Errorf("conservation: %v", err)
	}
}

func TestZeroAmounts(t *testing.T) {
	_, e := newEngine(t)
	if err := e.DepositCollateral("user", 0, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if err := e.DepositCollateral("user", 100, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSupplyMatchesCollateral(t *testing.T) {
	l, e := newEngine(t)
	for _, amt := range []uint64{100, 250, 1} {
		if err := e.DepositCollateral("user", amt, amt); err != nil {
			t.Fatalf("DepositCollateral(%d): %v", amt, err)
		}
	}
	custA, custB, supply := e.Collateralization()
	if supply != custA || supply != custB {
		t.Errorf("supply %d must equal both custody legs (%d, %d)", supply, custA, custB)
	}
	if err := l.CheckConservation(); err != nil {
		t.Errorf("conservation: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	l := ledger.New()
	l.RegisterAsset("blx", "blx", 18)
	l.RegisterAsset("sxt", "sxt", 18)

	if _, err := New(l, Config{CollateralA: "blx", CollateralB: "blx", Synthetic: "sxt"}); !errors.Is(err, ErrSameAsset) {
		t.Errorf("expected ErrSameAsset, got %v", err)
	}
	if _, err := New(l, Config{CollateralA: "blx", CollateralB: "strada", Synthetic: "sxt"}); !errors.Is(err, ledger.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound for unregistered collateral, got %v", err)
	}
}
