package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/ledger"
	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// Monetary values render as fixed 2-decimal strings so clients never see
// float artifacts.

type createMovementRequest struct {
	ForceCreate     bool       `json:"force_create"`
	CoreID          *uuid.UUID `json:"core_id,omitempty"`
	StatusID        *uuid.UUID `json:"status_id,omitempty"`
	ReasonID        *uuid.UUID `json:"reason_id,omitempty"`
	AdditionalNotes string     `json:"additional_notes,omitempty"`
}

func (r createMovementRequest) options() reconcile.Options {
	return reconcile.Options{
		ForceCreate: r.ForceCreate,
		CoreID:      r.CoreID,
		StatusID:    r.StatusID,
		ReasonID:    r.ReasonID,
		Notes:       r.AdditionalNotes,
	}
}

type bulkCreateRequest struct {
	InvoiceIDs []uuid.UUID            `json:"invoice_ids"`
	Options    *createMovementRequest `json:"options,omitempty"`
}

type movementResponse struct {
	ID              uuid.UUID           `json:"id"`
	CompanyID       uuid.UUID           `json:"company_id"`
	Type            ledger.MovementType `json:"type"`
	Amount          string              `json:"amount"`
	CoreID          uuid.UUID           `json:"core_id"`
	StatusID        uuid.UUID           `json:"status_id"`
	ReasonID        *uuid.UUID          `json:"reason_id,omitempty"`
	VatCodeID       *uuid.UUID          `json:"vat_code_id,omitempty"`
	SourceInvoiceID *uuid.UUID          `json:"source_invoice_id,omitempty"`
	Date            time.Time           `json:"date"`
	Notes           string              `json:"notes,omitempty"`
	Metadata        map[string]string   `json:"metadata,omitempty"`
}

func toMovementResponse(m ledger.Movement) movementResponse {
	resp := movementResponse{
		ID:              m.ID,
		CompanyID:       m.CompanyID,
		Type:            m.Type,
		Amount:          m.Amount.StringFixed(2),
		CoreID:          m.CoreID,
		StatusID:        m.StatusID,
		SourceInvoiceID: m.SourceInvoiceID,
		Date:            m.Date,
		Notes:           m.Notes,
		Metadata:        m.Metadata,
	}
	if m.ReasonID != uuid.Nil {
		id := m.ReasonID
		resp.ReasonID = &id
	}
	if m.VatCodeID != uuid.Nil {
		id := m.VatCodeID
		resp.VatCodeID = &id
	}
	return resp
}

// analysisResponse explains the classification behind a created movement.
type analysisResponse struct {
	MovementType   ledger.MovementType `json:"movement_type"`
	NegativeAmount bool                `json:"negative_amount"`
	AmountBefore   string              `json:"amount_before"`
	AmountAfter    string              `json:"amount_after"`
}

type syncResultResponse struct {
	InvoiceID          uuid.UUID              `json:"invoice_id"`
	Outcome            reconcile.Outcome      `json:"outcome"`
	Reason             string                 `json:"reason,omitempty"`
	MovementID         *uuid.UUID             `json:"movement_id,omitempty"`
	ExistingMovementID *uuid.UUID             `json:"existing_movement_id,omitempty"`
	Fields             []reconcile.FieldError `json:"fields,omitempty"`
}

func toSyncResultResponse(r reconcile.Result) syncResultResponse {
	resp := syncResultResponse{
		InvoiceID:          r.InvoiceID,
		Outcome:            r.Outcome,
		Reason:             r.Reason,
		ExistingMovementID: r.ExistingMovementID,
		Fields:             r.Fields,
	}
	if r.Movement != nil {
		id := r.Movement.ID
		resp.MovementID = &id
	}
	return resp
}

type summaryResponse struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

type bulkSyncResponse struct {
	Summary summaryResponse      `json:"summary"`
	Results []syncResultResponse `json:"results"`
	Errors  []syncResultResponse `json:"errors"`
}

func toBulkSyncResponse(sum reconcile.Summary) bulkSyncResponse {
	out := bulkSyncResponse{
		Summary: summaryResponse{Total: sum.Total, Successful: sum.Created, Skipped: sum.Skipped, Errors: sum.Errored},
		Results: make([]syncResultResponse, 0, len(sum.Results)),
		Errors:  make([]syncResultResponse, 0),
	}
	for _, r := range sum.Results {
		rr := toSyncResultResponse(r)
		out.Results = append(out.Results, rr)
		if r.Outcome == reconcile.OutcomeError {
			out.Errors = append(out.Errors, rr)
		}
	}
	return out
}

// Invoices

type invoiceLineResponse struct {
	ID        uuid.UUID  `json:"id"`
	VatCodeID *uuid.UUID `json:"vat_code_id,omitempty"`
	Taxable   string     `json:"taxable"`
}

type invoiceResponse struct {
	ID          uuid.UUID             `json:"id"`
	CompanyID   uuid.UUID             `json:"company_id"`
	Direction   ledger.Direction      `json:"direction"`
	Type        ledger.InvoiceType    `json:"invoice_type"`
	Number      string                `json:"number"`
	Date        time.Time             `json:"date"`
	TotalAmount string                `json:"total_amount"`
	Lines       []invoiceLineResponse `json:"lines"`
}

func toInvoiceResponse(inv ledger.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:          inv.ID,
		CompanyID:   inv.CompanyID,
		Direction:   inv.Direction,
		Type:        inv.Type,
		Number:      inv.Number,
		Date:        inv.Date,
		TotalAmount: inv.TotalAmount.StringFixed(2),
		Lines:       make([]invoiceLineResponse, 0, len(inv.Lines)),
	}
	for _, ln := range inv.Lines {
		lr := invoiceLineResponse{ID: ln.ID, Taxable: ln.Taxable.StringFixed(2)}
		if ln.VatCodeID != uuid.Nil {
			id := ln.VatCodeID
			lr.VatCodeID = &id
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

// VAT

type vatCalculateRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	VatCodeID       uuid.UUID       `json:"vat_code_id"`
	CalculationType string          `json:"calculation_type"`
}

type vatCodeResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Percentage  string    `json:"percentage"`
	Natura      string    `json:"natura,omitempty"`
	Description string    `json:"description,omitempty"`
}

func toVatCodeResponse(v ledger.VatCode) vatCodeResponse {
	return vatCodeResponse{
		ID:          v.ID,
		Code:        v.Code,
		Percentage:  v.Percentage.String(),
		Natura:      v.Natura,
		Description: v.Description,
	}
}

type vatCalculateResponse struct {
	Net     string          `json:"net"`
	Vat     string          `json:"vat"`
	Gross   string          `json:"gross"`
	VatCode vatCodeResponse `json:"vat_code"`
}
