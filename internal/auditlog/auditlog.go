// Package auditlog keeps an append-only CSV trail of reconciliation
// actions. Every automatic and manual transition lands here, so the
// history of a record survives any number of corrections.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Action identifies what happened to a reconciliation record.
type Action string

const (
	ActionAutoMatch  Action = "auto-match"
	ActionManualLink Action = "manual-link"
	ActionIgnore     Action = "ignore"
	ActionUndo       Action = "undo"
	ActionDivergence Action = "divergence"
)

// Entry is one row in the reconciliation log.
type Entry struct {
	Timestamp time.Time
	Actor     string // "matcher" or an operator identifier
	Action    Action
	RecordID  int64
	EntryID   int64 // 0 when the action carries no entry link
	Details   string
}

// Header is the CSV header for reconciliation-log.csv.
const Header = "timestamp,actor,action,record_id,entry_id,details"

const (
	numFields    = 6
	logFile      = "reconciliation-log.csv"
	colTimestamp = 0
	colActor     = 1
	colAction    = 2
	colRecordID  = 3
	colEntryID   = 4
	colDetails   = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = string(e.Action)
	row[colRecordID] = strconv.FormatInt(e.RecordID, 10)
	if e.EntryID != 0 {
		row[colEntryID] = strconv.FormatInt(e.EntryID, 10)
	}
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	recordID, err := strconv.ParseInt(record[colRecordID], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing record_id %q: %w", record[colRecordID], err)
	}

	var entryID int64
	if record[colEntryID] != "" {
		entryID, err = strconv.ParseInt(record[colEntryID], 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("parsing entry_id %q: %w", record[colEntryID], err)
		}
	}

	return Entry{
		Timestamp: ts,
		Actor:     record[colActor],
		Action:    Action(record[colAction]),
		RecordID:  recordID,
		EntryID:   entryID,
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to <dir>/reconciliation-log.csv, creating the
// file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating audit dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening reconciliation log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/reconciliation-log.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening reconciliation log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading reconciliation log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
