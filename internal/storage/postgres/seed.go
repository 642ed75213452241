package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/ledger"
)

// devInvoices builds a small set of invoices covering the interesting cases:
// outgoing standard, incoming standard and an incoming credit note.
func devInvoices(companyID, vatCodeID uuid.UUID) []ledger.Invoice {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	return []ledger.Invoice{
		{
			ID:          uuid.New(),
			CompanyID:   companyID,
			Direction:   ledger.DirectionOutgoing,
			Type:        ledger.InvoiceTypeStandard,
			Number:      "2026/0001",
			Date:        day.AddDate(0, 0, -2),
			TotalAmount: decimal.RequireFromString("1525.00"),
			Lines: []ledger.InvoiceLine{
				{ID: uuid.New(), VatCodeID: vatCodeID, Taxable: decimal.RequireFromString("1250.00")},
			},
		},
		{
			ID:          uuid.New(),
			CompanyID:   companyID,
			Direction:   ledger.DirectionIncoming,
			Type:        ledger.InvoiceTypeStandard,
			Number:      "FORN-88",
			Date:        day.AddDate(0, 0, -1),
			TotalAmount: decimal.RequireFromString("610.00"),
			Lines: []ledger.InvoiceLine{
				{ID: uuid.New(), VatCodeID: vatCodeID, Taxable: decimal.RequireFromString("500.00")},
			},
		},
		{
			ID:          uuid.New(),
			CompanyID:   companyID,
			Direction:   ledger.DirectionIncoming,
			Type:        ledger.InvoiceTypeCreditNote,
			Number:      "FORN-88-NC",
			Date:        day,
			TotalAmount: decimal.RequireFromString("200.00"),
			Lines: []ledger.InvoiceLine{
				{ID: uuid.New(), VatCodeID: vatCodeID, Taxable: decimal.RequireFromString("163.93")},
			},
		},
	}
}
