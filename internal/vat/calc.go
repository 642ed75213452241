// Package vat converts between net, VAT and gross amounts for a VAT-code
// definition. It is pure: no repository access, no side effects.
package vat

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/errs"
	"github.com/lbianchi/primanota/internal/ledger"
)

// Breakdown is the net/vat/gross triple produced by a calculation.
// Net + Vat == Gross always holds exactly.
type Breakdown struct {
	Net   decimal.Decimal
	Vat   decimal.Decimal
	Gross decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// round2 rounds to 2 decimal places, half away from zero. shopspring's Round
// is half-away-from-zero, which is what currency rounding needs here: with
// banker's rounding the gross->net->gross round trip can drift by a cent.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// checkCode refuses contradictory VAT-code configurations before any math.
func checkCode(code ledger.VatCode) error {
	if code.Percentage.IsNegative() {
		return fmt.Errorf("%w: code %q has negative percentage %s", errs.ErrInvalidVatCode, code.Code, code.Percentage)
	}
	if code.Natura != "" && !code.Percentage.IsZero() {
		return fmt.Errorf("%w: code %q sets natura %q together with percentage %s", errs.ErrInvalidVatCode, code.Code, code.Natura, code.Percentage)
	}
	return nil
}

// FromNet computes the breakdown starting from a net (imponibile) amount.
// Exempt/reverse-charge codes yield vat = 0 and gross = net.
func FromNet(net decimal.Decimal, code ledger.VatCode) (Breakdown, error) {
	if err := checkCode(code); err != nil {
		return Breakdown{}, err
	}
	if code.Exempt() {
		return Breakdown{Net: net, Vat: decimal.Zero, Gross: net}, nil
	}
	v := round2(net.Mul(code.Percentage).Div(oneHundred))
	return Breakdown{Net: net, Vat: v, Gross: net.Add(v)}, nil
}

// FromGross computes the breakdown starting from a gross (totale) amount.
// The net is rounded and the VAT recomputed as gross - net, never derived
// independently, so the triple reconciles exactly.
func FromGross(gross decimal.Decimal, code ledger.VatCode) (Breakdown, error) {
	if err := checkCode(code); err != nil {
		return Breakdown{}, err
	}
	if code.Exempt() {
		return Breakdown{Net: gross, Vat: decimal.Zero, Gross: gross}, nil
	}
	divisor := decimal.New(1, 0).Add(code.Percentage.Div(oneHundred))
	net := round2(gross.Div(divisor))
	return Breakdown{Net: net, Vat: gross.Sub(net), Gross: gross}, nil
}
