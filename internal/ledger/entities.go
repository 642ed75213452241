package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/meta"
)

// Direction indicates whether an invoice was issued or received by the company.
type Direction string

const (
	// DirectionOutgoing marks an invoice issued to a customer.
	DirectionOutgoing Direction = "outgoing"
	// DirectionIncoming marks an invoice received from a supplier.
	DirectionIncoming Direction = "incoming"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionOutgoing || d == DirectionIncoming
}

// InvoiceType is the closed taxonomy of document types the engine understands.
// Skip and sign behaviour hang off the type itself so that adding a new type
// forces the switches below to be revisited.
type InvoiceType string

const (
	// InvoiceTypeStandard is an ordinary invoice (SDI TD01).
	InvoiceTypeStandard InvoiceType = "standard"
	// InvoiceTypeCreditNote is a negative adjustment (SDI TD04).
	InvoiceTypeCreditNote InvoiceType = "credit_note"
	// InvoiceTypeDebitNote is a positive adjustment (SDI TD05).
	InvoiceTypeDebitNote InvoiceType = "debit_note"
	// InvoiceTypeSelfBilled covers autofatture (SDI TD16..TD20); these are
	// already reflected in the ledger and must never generate a movement.
	InvoiceTypeSelfBilled InvoiceType = "self_billed"
)

// Valid reports whether t is a known invoice type.
func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceTypeStandard, InvoiceTypeCreditNote, InvoiceTypeDebitNote, InvoiceTypeSelfBilled:
		return true
	}
	return false
}

// SkipsSync reports whether invoices of this type are excluded from movement
// generation. Self-billed documents are accounted for elsewhere.
func (t InvoiceType) SkipsSync() bool {
	switch t {
	case InvoiceTypeSelfBilled:
		return true
	case InvoiceTypeStandard, InvoiceTypeCreditNote, InvoiceTypeDebitNote:
		return false
	}
	return false
}

// InvertsSign reports whether the movement amount must be negated relative to
// its natural direction (credit notes reduce rather than add).
func (t InvoiceType) InvertsSign() bool {
	switch t {
	case InvoiceTypeCreditNote:
		return true
	case InvoiceTypeStandard, InvoiceTypeDebitNote, InvoiceTypeSelfBilled:
		return false
	}
	return false
}

// MovementType classifies a cash-flow movement.
type MovementType string

const (
	MovementTypeIncome  MovementType = "income"
	MovementTypeExpense MovementType = "expense"
)

// Company owns invoices and movements. Kept minimal: the engine only needs
// the id for scoping.
type Company struct {
	ID   uuid.UUID
	Name string
}

// Invoice is an electronic invoice as ingested from the exchange system.
// Invoices are read-only from the engine's perspective.
type Invoice struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Direction Direction
	Type      InvoiceType
	// Number is the human-facing document number.
	Number string
	// Date is the document date, used by the linkage heuristic.
	Date time.Time
	// TotalAmount is the gross total of the document. It should equal the sum
	// of line taxables plus their VAT within rounding tolerance; the engine
	// trusts it and never re-derives it from lines.
	TotalAmount decimal.Decimal
	Lines       []InvoiceLine
}

// InvoiceLine carries the taxable amount and VAT-code reference of one line.
type InvoiceLine struct {
	ID uuid.UUID
	// VatCodeID is uuid.Nil when the line carries no VAT code.
	VatCodeID uuid.UUID
	// Taxable is the net (imponibile) amount of the line.
	Taxable decimal.Decimal
}

// FirstVatCodeID returns the VAT-code id of the first line that carries one,
// or uuid.Nil. When lines disagree the first wins; the engine does not split
// movements across VAT codes.
func (i Invoice) FirstVatCodeID() uuid.UUID {
	for _, ln := range i.Lines {
		if ln.VatCodeID != uuid.Nil {
			return ln.VatCodeID
		}
	}
	return uuid.Nil
}

// VatCode is a tax-rate definition. Percentage and Natura are mutually
// exclusive: a positive rate has no natura, an exemption has a zero rate.
type VatCode struct {
	ID   uuid.UUID
	Code string
	// Percentage is the VAT rate, e.g. 22 for 22%.
	Percentage decimal.Decimal
	// Natura is the exemption/reverse-charge reason code (e.g. N2.2, N6.1),
	// empty for plain-rate codes.
	Natura      string
	Description string
}

// Exempt reports whether the code is an exemption/reverse-charge code.
func (v VatCode) Exempt() bool { return v.Natura != "" }

// Movement is a single signed cash-flow ledger entry.
type Movement struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Type      MovementType
	// Amount is signed: negative for adjustments that reduce the natural
	// direction (e.g. an incoming credit note).
	Amount decimal.Decimal
	// CoreID references the cost/profit center the movement belongs to.
	CoreID   uuid.UUID
	StatusID uuid.UUID
	ReasonID uuid.UUID
	// VatCodeID is uuid.Nil when no VAT code was attributed.
	VatCodeID uuid.UUID
	// SourceInvoiceID is the dedup key: set on every movement the engine
	// creates, nil for manually entered movements.
	SourceInvoiceID *uuid.UUID
	Date            time.Time
	Notes           string
	// Metadata holds additional key-value attributes for the movement.
	Metadata meta.Metadata `json:"metadata,omitempty"`
}
