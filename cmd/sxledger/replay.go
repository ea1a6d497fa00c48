package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/stradax/go-ledger/journal"
)

func replay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	db := fs.String("db", "", "Read the journal from a SQLite file instead of JSONL")
	from := fs.Uint64("from", 0, "First sequence number to read (SQLite only)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sxledger replay <journal.jsonl> [options]
       sxledger replay --db <journal.db> [options]

Rebuild ledger state from a journal and print a summary of the activity and
the resulting balances.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  sxledger replay run.jsonl
  sxledger replay --db run.db --from 100
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := loadEntries(fs, *db, *from)
	if err != nil {
		return err
	}

	journal.Summarize(entries).Print()

	l, err := journal.Replay(entries)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Println("\nBalances:")
	for _, a := range l.Assets() {
		fmt.Printf("  %s (%s) supply=%d\n", a.ID, a.Symbol, a.Supply)
		for _, h := range l.Holders(a.ID) {
			fmt.Printf("    %-24s %d\n", h, l.BalanceOf(a.ID, h))
		}
	}
	return nil
}

// loadEntries reads journal entries from either a JSONL positional argument
// or a SQLite store named by --db.
func loadEntries(fs *flag.FlagSet, db string, from uint64) ([]journal.Entry, error) {
	if db != "" {
		store, err := journal.NewSQLiteStore(db)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		return store.Read(context.Background(), from)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return nil, fmt.Errorf("journal file required")
	}
	return journal.ParseJSONL(fs.Arg(0))
}
