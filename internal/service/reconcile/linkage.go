package reconcile

import (
	"github.com/lbianchi/primanota/internal/ledger"
)

// linked reports whether a movement already accounts for the given invoice.
//
// The strong path matches on the explicit source-invoice reference. Movements
// ingested before that field existed (or entered manually) fall back to a
// heuristic: same company, same signed amount, same calendar day. The
// heuristic can mis-fire on two identical invoices in one day; force_create
// is the escape hatch.
func linked(m ledger.Movement, inv ledger.Invoice, cls Classification) bool {
	if m.SourceInvoiceID != nil {
		return *m.SourceInvoiceID == inv.ID
	}
	if m.CompanyID != inv.CompanyID {
		return false
	}
	want := inv.TotalAmount
	if cls.NegativeAmount {
		want = want.Neg()
	}
	if !m.Amount.Equal(want) {
		return false
	}
	my, mm, md := m.Date.UTC().Date()
	iy, im, id := inv.Date.UTC().Date()
	return my == iy && mm == im && md == id
}
