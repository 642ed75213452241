package reconcile

import "github.com/lbianchi/primanota/internal/ledger"

// Classification is the decision derived from invoice metadata alone.
type Classification struct {
	// Skip means no movement must be produced; Reason explains why.
	Skip   bool
	Reason string
	// Type is the movement direction the invoice maps to.
	Type ledger.MovementType
	// NegativeAmount means the materializer must negate the invoice total
	// relative to its direction (credit notes reduce, not add).
	NegativeAmount bool
}

// Classify decides whether an invoice produces a movement and with which
// semantics. It is pure and total for well-formed invoices; malformed ones
// are rejected by validateInvoice before this runs.
func Classify(inv ledger.Invoice) Classification {
	if inv.Type.SkipsSync() {
		return Classification{Skip: true, Reason: "auto-invoice already accounted for"}
	}
	c := Classification{NegativeAmount: inv.Type.InvertsSign()}
	switch inv.Direction {
	case ledger.DirectionOutgoing:
		c.Type = ledger.MovementTypeIncome
	case ledger.DirectionIncoming:
		c.Type = ledger.MovementTypeExpense
	}
	return c
}
