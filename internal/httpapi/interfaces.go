package httpapi

import (
	"context"

	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/ledger"
	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// InvoiceReader abstracts invoice read operations.
type InvoiceReader interface {
	// InvoiceByID returns an invoice with lines populated.
	InvoiceByID(ctx context.Context, id uuid.UUID) (ledger.Invoice, error)
	// Invoices returns a filtered, paged invoice listing.
	Invoices(ctx context.Context, f reconcile.InvoiceFilter) ([]ledger.Invoice, error)
}

// MovementReader abstracts movement read operations.
type MovementReader interface {
	// MovementsByCompany returns all movements for a company.
	MovementsByCompany(ctx context.Context, companyID uuid.UUID) ([]ledger.Movement, error)
}

// VatCodeReader abstracts VAT-code lookups.
type VatCodeReader interface {
	VatCodeByID(ctx context.Context, id uuid.UUID) (ledger.VatCode, error)
	VatCodes(ctx context.Context) ([]ledger.VatCode, error)
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// Repository composes the read-side operations used by the API.
// It is a convenience union satisfied by both stores.
type Repository interface {
	InvoiceReader
	MovementReader
	VatCodeReader
}
