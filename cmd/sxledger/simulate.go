package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/stradax/go-ledger/commit"
	"github.com/stradax/go-ledger/engine"
	"github.com/stradax/go-ledger/journal"
	"github.com/stradax/go-ledger/ledger"
	"github.com/stradax/go-ledger/mint"
	"github.com/stradax/go-ledger/vault"
)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	accounts := fs.Int("accounts", 3, "Number of staker accounts")
	deposit := fs.Uint64("deposit", 1000, "Collateral deposited per account (each leg)")
	stake := fs.Uint64("stake", 0, "Amount staked per account (default: full minted balance)")
	rewards := fs.Uint64("rewards", 300, "Rewards added by the treasury after staking")
	output := fs.String("output", "", "Output journal file (JSONL, required)")
	csvOut := fs.String("csv", "", "Also export the journal as CSV")
	dbOut := fs.String("db", "", "Also persist the journal to a SQLite file")
	verbose := fs.Bool("verbose", false, "Log each command as it is applied")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sxledger simulate [options]

Run a deterministic collateral and staking scenario: each account deposits
equal collateral, mints the synthetic token, stakes it, the treasury adds
rewards, and the first account unstakes. Every ledger mutation is journaled.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Three stakers, journal to run.jsonl
  sxledger simulate --accounts 3 --output run.jsonl

  # Larger deposits, persist to SQLite as well
  sxledger simulate --deposit 5000 --rewards 1000 --output run.jsonl --db run.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}
	if *accounts < 1 {
		return fmt.Errorf("--accounts must be at least 1")
	}

	l := ledger.New()
	e := engine.New(l)
	j := journal.New()
	e.WithJournal(j)
	if *verbose {
		e.WithLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
	}

	for _, a := range []struct {
		id       ledger.AssetID
		symbol   string
		decimals uint8
	}{
		{"blx", "BLX", 18},
		{"strada", "STRADA", 18},
		{"sxt", "SXT", 18},
		{"stsxt", "stSXT", 18},
	} {
		if err := e.RegisterAsset(a.id, a.symbol, a.decimals); err != nil {
			return err
		}
	}

	m, err := mint.New(l, mint.Config{CollateralA: "blx", CollateralB: "strada", Synthetic: "sxt"})
	if err != nil {
		return err
	}
	e.WithMint(m)

	v, err := vault.New(l, vault.Config{Base: "sxt", Share: "stsxt"})
	if err != nil {
		return err
	}
	if err := e.AddVault("staking", v); err != nil {
		return err
	}

	stakers := make([]ledger.AccountID, *accounts)
	for i := range stakers {
		stakers[i] = ledger.AccountID(fmt.Sprintf("staker%d", i+1))
	}
	treasury := ledger.AccountID("treasury")

	// Fund and run the scenario. The treasury mints its own synthetic by
	// depositing collateral like everyone else.
	for _, acct := range append(stakers, treasury) {
		if err := e.Issue("blx", acct, *deposit); err != nil {
			return err
		}
		if err := e.Issue("strada", acct, *deposit); err != nil {
			return err
		}
		if err := e.DepositCollateral(acct, *deposit, *deposit); err != nil {
			return err
		}
	}

	stakeAmount := *stake
	if stakeAmount == 0 {
		stakeAmount = *deposit
	}
	for _, acct := range stakers {
		minted, err := e.Stake("staking", acct, stakeAmount)
		if err != nil {
			return err
		}
		fmt.Printf("%s staked %d SXT for %d shares\n", acct, stakeAmount, minted)
	}

	if *rewards > 0 {
		if err := e.AddRewards("staking", treasury, *rewards); err != nil {
			return err
		}
		rate, _ := e.Rate("staking")
		fmt.Printf("treasury added %d SXT rewards, rate now %s\n", *rewards, rate)
	}

	shares := e.BalanceOf("stsxt", stakers[0])
	out, err := e.Unstake("staking", stakers[0], shares)
	if err != nil {
		return err
	}
	fmt.Printf("%s unstaked %d shares for %d SXT\n", stakers[0], shares, out)

	if err := l.CheckConservation(); err != nil {
		return err
	}
	c, err := commit.Ledger(l)
	if err != nil {
		return err
	}
	fmt.Printf("state commitment: %s\n", c)

	entries := j.Entries()
	if err := journal.WriteJSONL(*output, entries); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	fmt.Printf("journal: %d entries written to %s\n", len(entries), *output)

	if *csvOut != "" {
		if err := journal.ExportCSV(*csvOut, entries); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		fmt.Printf("csv exported to %s\n", *csvOut)
	}
	if *dbOut != "" {
		store, err := journal.NewSQLiteStore(*dbOut)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		if _, err := store.Append(context.Background(), -1, entries); err != nil {
			return fmt.Errorf("persist journal: %w", err)
		}
		fmt.Printf("journal persisted to %s\n", *dbOut)
	}
	return nil
}
