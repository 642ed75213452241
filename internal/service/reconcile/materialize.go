package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/ledger"
	"github.com/lbianchi/primanota/internal/meta"
)

// validateInvoice checks that an invoice is complete enough to materialize a
// movement from. It returns every failing field rather than stopping at the
// first so bulk callers can report precisely.
func validateInvoice(inv ledger.Invoice) []FieldError {
	var fields []FieldError
	if inv.CompanyID == uuid.Nil {
		fields = append(fields, FieldError{Field: "company_id", Reason: "is required"})
	}
	if !inv.Direction.Valid() {
		fields = append(fields, FieldError{Field: "direction", Reason: "must be outgoing or incoming"})
	}
	if !inv.Type.Valid() {
		fields = append(fields, FieldError{Field: "invoice_type", Reason: "unknown invoice type"})
	}
	if !inv.TotalAmount.IsPositive() {
		fields = append(fields, FieldError{Field: "total_amount", Reason: "must be greater than zero"})
	}
	return fields
}

// materialize builds the movement record for an invoice that passed
// validation and was not classified as skipped. The invoice's own total is
// trusted; lines are consulted only for VAT-code attribution.
func (s *service) materialize(inv ledger.Invoice, cls Classification, opts Options, now time.Time) ledger.Movement {
	amount := inv.TotalAmount
	if cls.NegativeAmount {
		amount = amount.Neg()
	}

	// CoreID falls back to the company id; production callers are expected
	// to override it with a real cost center.
	coreID := inv.CompanyID
	if opts.CoreID != nil {
		coreID = *opts.CoreID
	}
	statusID := s.cfg.DefaultStatusID
	if opts.StatusID != nil {
		statusID = *opts.StatusID
	}
	var reasonID uuid.UUID
	if opts.ReasonID != nil {
		reasonID = *opts.ReasonID
	}

	notes := "generated from invoice " + inv.Number
	if opts.Notes != "" {
		notes += " - " + opts.Notes
	}

	md := meta.New(nil)
	md.Set("source", "invoice_sync")
	md.Set("invoice_type", string(inv.Type))
	md.Set("invoice_number", inv.Number)

	srcID := inv.ID
	return ledger.Movement{
		ID:              uuid.New(),
		CompanyID:       inv.CompanyID,
		Type:            cls.Type,
		Amount:          amount,
		CoreID:          coreID,
		StatusID:        statusID,
		ReasonID:        reasonID,
		VatCodeID:       inv.FirstVatCodeID(),
		SourceInvoiceID: &srcID,
		Date:            now,
		Notes:           notes,
		Metadata:        md,
	}
}
