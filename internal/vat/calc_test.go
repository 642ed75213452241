package vat

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/errs"
	"github.com/lbianchi/primanota/internal/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func code(pct string, natura string) ledger.VatCode {
	return ledger.VatCode{Code: "test", Percentage: dec(pct), Natura: natura}
}

func TestFromNet(t *testing.T) {
	cases := []struct {
		name          string
		net           string
		code          ledger.VatCode
		wantVat       string
		wantGross     string
	}{
		{"ordinary 22%", "1250.00", code("22", ""), "275.00", "1525.00"},
		{"reduced 10%", "500.00", code("10", ""), "50.00", "550.00"},
		{"rounds half away from zero", "0.25", code("10", ""), "0.03", "0.28"},
		{"exempt natura", "1250.00", code("0", "N2.2"), "0.00", "1250.00"},
		{"zero rate without natura", "100.00", code("0", ""), "0.00", "100.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := FromNet(dec(tc.net), tc.code)
			if err != nil {
				t.Fatalf("FromNet: %v", err)
			}
			if !b.Vat.Equal(dec(tc.wantVat)) {
				t.Fatalf("vat = %s, want %s", b.Vat, tc.wantVat)
			}
			if !b.Gross.Equal(dec(tc.wantGross)) {
				t.Fatalf("gross = %s, want %s", b.Gross, tc.wantGross)
			}
			if !b.Net.Add(b.Vat).Equal(b.Gross) {
				t.Fatalf("net %s + vat %s != gross %s", b.Net, b.Vat, b.Gross)
			}
		})
	}
}

func TestFromGross(t *testing.T) {
	b, err := FromGross(dec("1525.00"), code("22", ""))
	if err != nil {
		t.Fatalf("FromGross: %v", err)
	}
	if !b.Net.Equal(dec("1250.00")) || !b.Vat.Equal(dec("275.00")) {
		t.Fatalf("got net=%s vat=%s, want 1250.00/275.00", b.Net, b.Vat)
	}

	// Awkward gross: net rounds, vat absorbs the remainder so the triple
	// still reconciles exactly.
	b, err = FromGross(dec("100.00"), code("22", ""))
	if err != nil {
		t.Fatalf("FromGross: %v", err)
	}
	if !b.Net.Equal(dec("81.97")) {
		t.Fatalf("net = %s, want 81.97", b.Net)
	}
	if !b.Net.Add(b.Vat).Equal(b.Gross) {
		t.Fatalf("net %s + vat %s != gross %s", b.Net, b.Vat, b.Gross)
	}
}

func TestRoundTrip(t *testing.T) {
	codes := []ledger.VatCode{code("22", ""), code("10", ""), code("4", ""), code("5", "")}
	nets := []string{"0.01", "1.00", "19.99", "123.45", "1250.00", "9999.99", "33333.33"}
	for _, c := range codes {
		for _, n := range nets {
			net := dec(n)
			fwd, err := FromNet(net, c)
			if err != nil {
				t.Fatalf("FromNet(%s, %s%%): %v", n, c.Percentage, err)
			}
			back, err := FromGross(fwd.Gross, c)
			if err != nil {
				t.Fatalf("FromGross(%s, %s%%): %v", fwd.Gross, c.Percentage, err)
			}
			if back.Net.Sub(net).Abs().GreaterThan(dec("0.01")) {
				t.Fatalf("round trip drift: net %s -> gross %s -> net %s (rate %s)", net, fwd.Gross, back.Net, c.Percentage)
			}
		}
	}
}

func TestInvalidCodes(t *testing.T) {
	cases := []struct {
		name string
		code ledger.VatCode
	}{
		{"negative percentage", code("-1", "")},
		{"natura with non-zero percentage", code("22", "N2.2")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromNet(dec("100"), tc.code); !errors.Is(err, errs.ErrInvalidVatCode) {
				t.Fatalf("FromNet err = %v, want ErrInvalidVatCode", err)
			}
			if _, err := FromGross(dec("100"), tc.code); !errors.Is(err, errs.ErrInvalidVatCode) {
				t.Fatalf("FromGross err = %v, want ErrInvalidVatCode", err)
			}
		})
	}
}
