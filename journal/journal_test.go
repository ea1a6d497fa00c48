package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stradax/go-ledger/ledger"
)

// recorder wires a Journal to a Ledger as its observer.
type recorder struct {
	journal *Journal
	action  string
}

func (r *recorder) Mutated(m ledger.Mutation) {
	r.journal.Record(r.action, m)
}

func observedLedger(t *testing.T) (*ledger.Ledger, *Journal, *recorder) {
	t.Helper()
	j := New()
	rec := &recorder{journal: j}
	l := ledger.New()
	l.SetObserver(rec)
	return l, j, rec
}

func TestRecordAssignsSequence(t *testing.T) {
	l, j, rec := observedLedger(t)

	rec.action = "setup"
	l.RegisterAsset("sxt", "sxt", 18)
	l.Mint("sxt", "alice", 100)
	rec.action = "transfer"
	l.Transfer("sxt", "alice", "bob", 40)

	entries := j.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Seq != uint64(i) {
			t.Errorf("entry %d has seq %d", i, e.Seq)
		}
		if e.ID == "" {
			t.Errorf("entry %d missing ID", i)
		}
	}
	if entries[2].Action != "transfer" || entries[2].Amount != 40 {
		t.Errorf("unexpected final entry: %+v", entries[2])
	}
}

func TestSummarize(t *testing.T) {
	l, j, rec := observedLedger(t)

	rec.action = "setup"
	l.RegisterAsset("sxt", "sxt", 18)
	rec.action = "mint"
	l.Mint("sxt", "alice", 100)
	l.Mint("sxt", "bob", 50)

	s := j.Summarize()
	if s.NumEntries != 3 {
		t.Errorf("NumEntries = %d, want 3", s.NumEntries)
	}
	if s.ByAction["mint"] != 2 {
		t.Errorf("ByAction[mint] = %d, want 2", s.ByAction["mint"])
	}
	if s.ByAsset["sxt"] != 3 {
		t.Errorf("ByAsset[sxt] = %d, want 3", s.ByAsset["sxt"])
	}
	if s.EndTime.Before(s.StartTime) {
		t.Error("EndTime before StartTime")
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	l, j, rec := observedLedger(t)

	rec.action = "setup"
	l.RegisterAsset("sxt", "sxt", 18)
	l.Mint("sxt", "alice", 100)
	l.Transfer("sxt", "alice", "bob", 25)
	l.Burn("sxt", "bob", 5)

	var buf bytes.Buffer
	if err := WriteJSONLWriter(&buf, j.Entries()); err != nil {
		t.Fatalf("WriteJSONLWriter: %v", err)
	}

	parsed, err := ParseJSONLReader(&buf)
	if err != nil {
		t.Fatalf("ParseJSONLReader: %v", err)
	}
	if len(parsed) != j.Len() {
		t.Fatalf("parsed %d entries, want %d", len(parsed), j.Len())
	}
	for i, e := range parsed {
		orig := j.Entries()[i]
		if e.ID != orig.ID || e.Kind != orig.Kind || e.Amount != orig.Amount {
			t.Errorf("entry %d mismatch: got %+v want %+v", i, e, orig)
		}
	}
}

func TestParseJSONLBadLine(t *testing.T) {
	_, err := ParseJSONLReader(strings.NewReader("{\"seq\":0}\nnot json\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line-2 error, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	l, j, rec := observedLedger(t)
	rec.action = "setup"
	l.RegisterAsset("sxt", "sxt", 18)
	l.Mint("sxt", "alice", 100)

	var buf bytes.Buffer
	if err := ExportCSVWriter(&buf, j.Entries()); err != nil {
		t.Fatalf("ExportCSVWriter: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 { // header + 2 entries
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "seq,id,kind") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[2], "mint") || !strings.Contains(lines[2], "100") {
		t.Errorf("mint entry not exported: %s", lines[2])
	}
}

func TestReplayReproducesState(t *testing.T) {
	l, j, rec := observedLedger(t)

	rec.action = "setup"
	l.RegisterAsset("blx", "blx", 18)
	l.RegisterAsset("sxt", "sxt", 18)
	l.Mint("blx", "alice", 1000)
	rec.action = "trade"
	l.Transfer("blx", "alice", "custody", 300)
	l.Mint("sxt", "alice", 300)
	l.Burn("sxt", "alice", 50)

	replayed, err := Replay(j.Entries())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	for _, check := range []struct {
		asset   ledger.AssetID
		account ledger.AccountID
	}{
		{"blx", "alice"}, {"blx", "custody"}, {"sxt", "alice"},
	} {
		want := l.BalanceOf(check.asset, check.account)
		got := replayed.BalanceOf(check.asset, check.account)
		if got != want {
			t.Errorf("replayed %s/%s = %d, want %d", check.asset, check.account, got, want)
		}
	}
	if got, want := replayed.TotalSupply("sxt"), l.TotalSupply("sxt"); got != want {
		t.Errorf("replayed sxt supply = %d, want %d", got, want)
	}
	if err := replayed.CheckConservation(); err != nil {
		t.Errorf("replayed conservation: %v", err)
	}
}

func TestReplayRejectsUnknownKind(t *testing.T) {
	_, err := Replay([]Entry{{Seq: 7, Kind: "teleport"}})
	if err == nil || !strings.Contains(err.Error(), "seq 7") {
		t.Errorf("expected seq-7 error, got %v", err)
	}
}
