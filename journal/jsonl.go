package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSONL writes entries to a JSONL (JSON Lines) file, one entry per line.
func WriteJSONL(filename string, entries []Entry) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := WriteJSONLWriter(f, entries); err != nil {
		return err
	}
	return f.Close()
}

// WriteJSONLWriter writes entries to a JSONL writer.
func WriteJSONLWriter(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ParseJSONL reads entries from a JSONL file.
func ParseJSONL(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseJSONLReader(f)
}

// ParseJSONLReader reads entries from a JSONL reader. Blank lines are
// skipped; malformed lines fail with their line number.
func ParseJSONLReader(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return entries, nil
}
