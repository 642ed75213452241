package reconcile

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/ledger"
)

// Outcome is the terminal state of one invoice within a sync run.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// Result is the per-invoice outcome of a sync. It is request-scoped and never
// persisted.
type Result struct {
	InvoiceID uuid.UUID
	Outcome   Outcome
	// Reason is set for skipped and errored results.
	Reason string
	// Movement is the movement just created, nil otherwise.
	Movement *ledger.Movement
	// Classification is populated whenever the invoice was classified.
	Classification *Classification
	// ExistingMovementID is set when skipped because a movement is already
	// linked to the invoice.
	ExistingMovementID *uuid.UUID
	// Fields carries field-level detail when validation failed.
	Fields []FieldError
}

// Summary aggregates the per-item results of a bulk sync.
type Summary struct {
	Total   int
	Created int
	Skipped int
	Errored int
	Results []Result
}

func (s *Summary) add(r Result) {
	s.Total++
	switch r.Outcome {
	case OutcomeCreated:
		s.Created++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeError:
		s.Errored++
	}
	s.Results = append(s.Results, r)
}

// FieldError names one invalid invoice field and why it was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries the full field-level error list so bulk callers can
// report precisely which invoices were rejected and why.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "invalid invoice: " + strings.Join(parts, "; ")
}

// Options are caller-supplied knobs for a sync run.
type Options struct {
	// ForceCreate bypasses the already-linked check. Calling twice with
	// ForceCreate creates two movements; that is the caller's responsibility.
	ForceCreate bool
	// CoreID overrides the cost/profit-center; defaults to the invoice's
	// company id when absent.
	CoreID *uuid.UUID
	// StatusID overrides the configured default movement status.
	StatusID *uuid.UUID
	// ReasonID is attached verbatim when present.
	ReasonID *uuid.UUID
	// Notes is free text appended to the generated movement notes.
	Notes string
}

// Collector receives sync outcomes. It exists so callers can observe the
// engine without the engine holding module-level counters; the HTTP layer
// plugs in a Prometheus-backed implementation.
type Collector interface {
	Outcome(o Outcome)
}

// NopCollector discards outcomes. Used as the default and in tests.
type NopCollector struct{}

func (NopCollector) Outcome(Outcome) {}
