package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/errs"
	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// createMovement handles POST /v1/invoices/{id}/create-movement.
// 201 with the movement and its analysis; 409 when already linked and
// force_create is false; 400 with field-level errors when the invoice is
// incomplete; 200 with a skipped result for policy skips (self-billed).
func (s *Server) createMovement(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid invoice id")
		return
	}

	var req createMovementRequest
	if r.ContentLength != 0 {
		if !requireJSON(w, r) {
			return
		}
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(w, "invalid JSON: "+err.Error())
			return
		}
	}

	// Resolve the invoice up front so unknown ids are a clean 404 instead of
	// an error-shaped sync result.
	inv, err := s.invoices.InvoiceByID(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w)
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error(), "repository_error")
		return
	}

	res := s.svc.SyncOne(r.Context(), invoiceID, req.options())
	switch res.Outcome {
	case reconcile.OutcomeCreated:
		toJSON(w, http.StatusCreated, struct {
			Movement movementResponse `json:"movement"`
			Analysis analysisResponse `json:"analysis"`
		}{
			Movement: toMovementResponse(*res.Movement),
			Analysis: analysisResponse{
				MovementType:   res.Classification.Type,
				NegativeAmount: res.Classification.NegativeAmount,
				AmountBefore:   inv.TotalAmount.StringFixed(2),
				AmountAfter:    res.Movement.Amount.StringFixed(2),
			},
		})
	case reconcile.OutcomeSkipped:
		if res.ExistingMovementID != nil {
			toJSON(w, http.StatusConflict, struct {
				errorResponse
				ExistingMovementID uuid.UUID `json:"existing_movement_id"`
			}{
				errorResponse:      errorResponse{Error: "already_linked", Code: "already_linked"},
				ExistingMovementID: *res.ExistingMovementID,
			})
			return
		}
		toJSON(w, http.StatusOK, toSyncResultResponse(res))
	default:
		if len(res.Fields) > 0 {
			toJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_failed", Code: "validation_failed", Fields: res.Fields})
			return
		}
		writeErr(w, http.StatusInternalServerError, res.Reason, "sync_error")
	}
}

// bulkCreateMovements handles POST /v1/invoices/bulk-create-movements.
// Always 200 with per-item status; non-2xx is reserved for request-shape
// problems.
func (s *Server) bulkCreateMovements(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req bulkCreateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if len(req.InvoiceIDs) == 0 {
		badRequest(w, "invoice_ids is required")
		return
	}
	var opts reconcile.Options
	if req.Options != nil {
		opts = req.Options.options()
	}
	sum := s.svc.SyncMany(r.Context(), req.InvoiceIDs, opts)
	toJSON(w, http.StatusOK, toBulkSyncResponse(sum))
}

// syncExisting handles POST /v1/invoices/sync-existing: a full, idempotent
// resync over every stored invoice.
func (s *Server) syncExisting(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.SyncAllExisting(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error(), "repository_error")
		return
	}
	toJSON(w, http.StatusOK, toBulkSyncResponse(sum))
}
