package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/errs"
	"github.com/lbianchi/primanota/internal/vat"
)

const (
	calcFromNet   = "from_imponibile"
	calcFromGross = "from_totale"
)

// vatCalculate handles POST /v1/vat/calculate. It refuses silently-wrong
// math: a contradictory VAT code is a 400, never a guess.
func (s *Server) vatCalculate(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req vatCalculateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.VatCodeID == uuid.Nil {
		badRequest(w, "vat_code_id is required")
		return
	}

	code, err := s.vatCodes.VatCodeByID(r.Context(), req.VatCodeID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w)
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error(), "repository_error")
		return
	}

	var b vat.Breakdown
	switch req.CalculationType {
	case calcFromNet:
		b, err = vat.FromNet(req.Amount, code)
	case calcFromGross:
		b, err = vat.FromGross(req.Amount, code)
	default:
		badRequest(w, "calculation_type must be from_imponibile or from_totale")
		return
	}
	if err != nil {
		if errors.Is(err, errs.ErrInvalidVatCode) {
			writeErr(w, http.StatusBadRequest, err.Error(), "invalid_vat_code")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	toJSON(w, http.StatusOK, vatCalculateResponse{
		Net:     b.Net.StringFixed(2),
		Vat:     b.Vat.StringFixed(2),
		Gross:   b.Gross.StringFixed(2),
		VatCode: toVatCodeResponse(code),
	})
}

// listVatCodes handles GET /v1/vat-codes.
func (s *Server) listVatCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := s.vatCodes.VatCodes(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error(), "repository_error")
		return
	}
	out := struct {
		Items []vatCodeResponse `json:"items"`
	}{Items: make([]vatCodeResponse, 0, len(codes))}
	for _, c := range codes {
		out.Items = append(out.Items, toVatCodeResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}
