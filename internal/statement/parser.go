// Package statement converts raw bank statement exports into normalized
// statements. Parsers are pure functions of their input: no deduplication,
// no persistence.
package statement

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sodcapital/reconcile/internal/model"
)

var (
	// ErrMalformed reports a statement file whose required structural
	// markers are absent. Fatal to the import; nothing is ingested.
	ErrMalformed = errors.New("malformed statement")

	// ErrEmptyStatement reports a statement with zero transactions. Soft
	// failure: the statement header is still returned alongside it.
	ErrEmptyStatement = errors.New("statement contains no transactions")
)

// Parser converts a raw bank export into a normalized Statement.
type Parser interface {
	Parse(r io.Reader) (*model.Statement, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&OFXParser{})
	r.Register(&CSVParser{})
	return r
}

// dateOnly normalizes a timestamp to a canonical calendar date,
// independent of the source time zone.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
