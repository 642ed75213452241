// Package reconcile implements the invoice-to-ledger reconciliation engine:
// it decides whether an invoice yields a cash-flow movement, builds the
// movement, and keeps repeated sync runs from duplicating entries.
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/ledger"
)

// InvoiceFilter narrows and pages invoice listings.
type InvoiceFilter struct {
	// CompanyID scopes the listing when not uuid.Nil.
	CompanyID uuid.UUID
	Limit     int
	Offset    int
}

// Repo defines the read operations needed by the engine.
type Repo interface {
	InvoiceByID(ctx context.Context, id uuid.UUID) (ledger.Invoice, error)
	Invoices(ctx context.Context, f InvoiceFilter) ([]ledger.Invoice, error)
	MovementsByCompany(ctx context.Context, companyID uuid.UUID) ([]ledger.Movement, error)
}

// Writer defines the write operations needed by the engine.
type Writer interface {
	CreateMovement(ctx context.Context, m ledger.Movement) (ledger.Movement, error)
}

// Service exposes the three sync entry points sharing one core operation.
type Service interface {
	// SyncOne reconciles a single invoice. Errors are folded into the Result
	// so batch callers are never aborted by one bad invoice.
	SyncOne(ctx context.Context, invoiceID uuid.UUID, opts Options) Result
	// SyncMany reconciles invoices sequentially in input order; each item is
	// independently committed or skipped, no partial rollback.
	SyncMany(ctx context.Context, invoiceIDs []uuid.UUID, opts Options) Summary
	// SyncAllExisting loads every invoice (paged) and reconciles it. Safe to
	// re-run: already-linked invoices are skipped.
	SyncAllExisting(ctx context.Context) (Summary, error)
}

// Config holds the engine's only long-lived state.
type Config struct {
	// DefaultStatusID is assigned to movements when the caller supplies no
	// status override.
	DefaultStatusID uuid.UUID
}

// syncPageSize bounds each repository page during a full resync.
const syncPageSize = 200

type service struct {
	repo   Repo
	writer Writer
	cfg    Config
	stats  Collector
	now    func() time.Time
}

// New constructs the reconciliation service. A nil collector is replaced by a
// no-op one.
func New(repo Repo, writer Writer, cfg Config, stats Collector) Service {
	if stats == nil {
		stats = NopCollector{}
	}
	return &service{repo: repo, writer: writer, cfg: cfg, stats: stats, now: time.Now}
}

func (s *service) SyncOne(ctx context.Context, invoiceID uuid.UUID, opts Options) Result {
	r := s.syncOne(ctx, invoiceID, opts)
	s.stats.Outcome(r.Outcome)
	return r
}

func (s *service) syncOne(ctx context.Context, invoiceID uuid.UUID, opts Options) Result {
	res := Result{InvoiceID: invoiceID}

	inv, err := s.repo.InvoiceByID(ctx, invoiceID)
	if err != nil {
		res.Outcome = OutcomeError
		res.Reason = "load invoice: " + err.Error()
		return res
	}

	if fields := validateInvoice(inv); len(fields) > 0 {
		res.Outcome = OutcomeError
		res.Fields = fields
		res.Reason = (&ValidationError{Fields: fields}).Error()
		return res
	}

	cls := Classify(inv)
	res.Classification = &cls
	if cls.Skip {
		res.Outcome = OutcomeSkipped
		res.Reason = cls.Reason
		return res
	}

	if !opts.ForceCreate {
		movements, err := s.repo.MovementsByCompany(ctx, inv.CompanyID)
		if err != nil {
			res.Outcome = OutcomeError
			res.Reason = "scan movements: " + err.Error()
			return res
		}
		for i := range movements {
			if linked(movements[i], inv, cls) {
				id := movements[i].ID
				res.Outcome = OutcomeSkipped
				res.Reason = "already linked"
				res.ExistingMovementID = &id
				return res
			}
		}
	}

	draft := s.materialize(inv, cls, opts, s.now().UTC())
	created, err := s.writer.CreateMovement(ctx, draft)
	if err != nil {
		res.Outcome = OutcomeError
		res.Reason = "create movement: " + err.Error()
		return res
	}
	res.Outcome = OutcomeCreated
	res.Movement = &created
	return res
}

func (s *service) SyncMany(ctx context.Context, invoiceIDs []uuid.UUID, opts Options) Summary {
	// Strictly sequential: the linked-check/write pair must not race within
	// a batch.
	var sum Summary
	for _, id := range invoiceIDs {
		sum.add(s.SyncOne(ctx, id, opts))
	}
	return sum
}

func (s *service) SyncAllExisting(ctx context.Context) (Summary, error) {
	var sum Summary
	offset := 0
	for {
		page, err := s.repo.Invoices(ctx, InvoiceFilter{Limit: syncPageSize, Offset: offset})
		if err != nil {
			return sum, err
		}
		for _, inv := range page {
			sum.add(s.SyncOne(ctx, inv.ID, Options{}))
		}
		if len(page) < syncPageSize {
			return sum, nil
		}
		offset += len(page)
	}
}
