package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/errs"
	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// getInvoice handles GET /v1/invoices/{id}.
func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid invoice id")
		return
	}
	inv, err := s.invoices.InvoiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w)
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error(), "repository_error")
		return
	}
	toJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

// listInvoices handles GET /v1/invoices?company_id=&limit=&offset=.
func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f reconcile.InvoiceFilter
	if raw := q.Get("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "invalid company_id")
			return
		}
		f.CompanyID = id
	}
	f.Limit = parseIntParam(q.Get("limit"), 100)
	f.Offset = parseIntParam(q.Get("offset"), 0)
	invoices, err := s.invoices.Invoices(r.Context(), f)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error(), "repository_error")
		return
	}
	out := struct {
		Items []invoiceResponse `json:"items"`
	}{Items: make([]invoiceResponse, 0, len(invoices))}
	for _, inv := range invoices {
		out.Items = append(out.Items, toInvoiceResponse(inv))
	}
	toJSON(w, http.StatusOK, out)
}

// listMovements handles GET /v1/movements?company_id=.
func (s *Server) listMovements(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("company_id")
	if raw == "" {
		badRequest(w, "company_id is required")
		return
	}
	companyID, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, "invalid company_id")
		return
	}
	movements, err := s.movements.MovementsByCompany(r.Context(), companyID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error(), "repository_error")
		return
	}
	out := struct {
		Items []movementResponse `json:"items"`
	}{Items: make([]movementResponse, 0, len(movements))}
	for _, m := range movements {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	toJSON(w, http.StatusOK, out)
}

func parseIntParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
