package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{
	"seq", "id", "kind", "action", "asset", "from", "to", "amount", "timestamp",
}

// ExportCSV writes entries to a CSV file with a header row.
func ExportCSV(filename string, entries []Entry) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := ExportCSVWriter(f, entries); err != nil {
		return err
	}
	return f.Close()
}

// ExportCSVWriter writes entries to a CSV writer.
func ExportCSVWriter(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		record := []string{
			strconv.FormatUint(e.Seq, 10),
			e.ID,
			string(e.Kind),
			e.Action,
			string(e.Asset),
			string(e.From),
			string(e.To),
			strconv.FormatUint(e.Amount, 10),
			e.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
