// Package journal provides an append-only record of ledger operations.
//
// Every entry captures one primitive ledger mutation (register, mint, burn,
// transfer) together with the high-level action that caused it, so the
// journal serves both as an audit trail and as the input to Replay, which
// rebuilds ledger state deterministically. Entries serialize to JSONL for
// durable logs and to CSV for analysis tooling.
package journal

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stradax/go-ledger/ledger"
)

// Entry is a single journaled mutation.
type Entry struct {
	ID        string              `json:"id"`
	Seq       uint64              `json:"seq"`
	Kind      ledger.MutationKind `json:"kind"`
	Action    string              `json:"action,omitempty"` // high-level command, e.g. "stake"
	Asset     ledger.AssetID      `json:"asset"`
	Symbol    string              `json:"symbol,omitempty"`
	Decimals  uint8               `json:"decimals,omitempty"`
	From      ledger.AccountID    `json:"from,omitempty"`
	To        ledger.AccountID    `json:"to,omitempty"`
	Amount    uint64              `json:"amount,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Journal is an in-memory append-only list of entries.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	nextSeq uint64
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{}
}

// Record appends a mutation with its high-level action label, assigning the
// entry ID, sequence number and timestamp.
func (j *Journal) Record(action string, m ledger.Mutation) Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	e := Entry{
		ID:        uuid.NewString(),
		Seq:       j.nextSeq,
		Kind:      m.Kind,
		Action:    action,
		Asset:     m.Asset,
		Symbol:    m.Symbol,
		Decimals:  m.Decimals,
		From:      m.From,
		To:        m.To,
		Amount:    m.Amount,
		Timestamp: time.Now().UTC(),
	}
	j.nextSeq++
	j.entries = append(j.entries, e)
	return e
}

// Append adds already-formed entries, renumbering them onto this journal's
// sequence. Used when loading from a store.
func (j *Journal) Append(entries ...Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range entries {
		e.Seq = j.nextSeq
		j.nextSeq++
		j.entries = append(j.entries, e)
	}
}

// Entries returns a copy of the journal contents in sequence order.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// Len returns the number of entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Summary provides basic statistics about a journal.
type Summary struct {
	NumEntries int
	ByAction   map[string]int
	ByAsset    map[ledger.AssetID]int
	StartTime  time.Time
	EndTime    time.Time
}

// Summarize computes summary statistics over the journal.
func (j *Journal) Summarize() Summary {
	return Summarize(j.Entries())
}

// Summarize computes summary statistics over a slice of entries.
func Summarize(entries []Entry) Summary {
	s := Summary{
		NumEntries: len(entries),
		ByAction:   make(map[string]int),
		ByAsset:    make(map[ledger.AssetID]int),
	}
	for i, e := range entries {
		action := e.Action
		if action == "" {
			action = string(e.Kind)
		}
		s.ByAction[action]++
		s.ByAsset[e.Asset]++
		if i == 0 || e.Timestamp.Before(s.StartTime) {
			s.StartTime = e.Timestamp
		}
		if i == 0 || e.Timestamp.After(s.EndTime) {
			s.EndTime = e.Timestamp
		}
	}
	return s
}

// Print writes a human-readable summary to stdout.
func (s Summary) Print() {
	fmt.Println("=== Journal Summary ===")
	fmt.Printf("Entries: %d\n", s.NumEntries)
	if s.NumEntries > 0 {
		fmt.Printf("Time range: %s to %s\n",
			s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339))
	}
	for _, action := range sortedKeys(s.ByAction) {
		fmt.Printf("  %-20s %d\n", action, s.ByAction[action])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
