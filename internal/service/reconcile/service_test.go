package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/ledger"
	"github.com/lbianchi/primanota/internal/service/reconcile"
	"github.com/lbianchi/primanota/internal/storage/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store     *memory.Store
	svc       reconcile.Service
	companyID uuid.UUID
	vatCodeID uuid.UUID
	statusID  uuid.UUID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{
		store:     store,
		companyID: uuid.New(),
		vatCodeID: uuid.New(),
		statusID:  uuid.New(),
	}
	store.SeedCompany(ledger.Company{ID: f.companyID, Name: "Test Srl"})
	store.SeedVatCode(ledger.VatCode{ID: f.vatCodeID, Code: "22", Percentage: dec("22")})
	f.svc = reconcile.New(store, store, reconcile.Config{DefaultStatusID: f.statusID}, nil)
	return f
}

func (f *fixture) seedInvoice(t *testing.T, dir ledger.Direction, typ ledger.InvoiceType, total string) ledger.Invoice {
	t.Helper()
	inv := ledger.Invoice{
		ID:          uuid.New(),
		CompanyID:   f.companyID,
		Direction:   dir,
		Type:        typ,
		Number:      "INV-" + uuid.NewString()[:8],
		Date:        time.Now().UTC(),
		TotalAmount: dec(total),
		Lines: []ledger.InvoiceLine{
			{ID: uuid.New(), VatCodeID: f.vatCodeID, Taxable: dec(total)},
		},
	}
	f.store.SeedInvoice(inv)
	return inv
}

func TestSyncOne_Idempotent(t *testing.T) {
	f := setup(t)
	inv := f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "1000.00")
	ctx := context.Background()

	first := f.svc.SyncOne(ctx, inv.ID, reconcile.Options{})
	if first.Outcome != reconcile.OutcomeCreated {
		t.Fatalf("first sync outcome = %s (%s), want created", first.Outcome, first.Reason)
	}
	second := f.svc.SyncOne(ctx, inv.ID, reconcile.Options{})
	if second.Outcome != reconcile.OutcomeSkipped {
		t.Fatalf("second sync outcome = %s, want skipped", second.Outcome)
	}
	if second.Reason != "already linked" {
		t.Fatalf("second sync reason = %q", second.Reason)
	}
	if second.ExistingMovementID == nil || *second.ExistingMovementID != first.Movement.ID {
		t.Fatalf("existing movement id = %v, want %s", second.ExistingMovementID, first.Movement.ID)
	}
	movements, _ := f.store.MovementsByCompany(ctx, f.companyID)
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(movements))
	}
}

func TestSyncOne_ForceCreatesDuplicate(t *testing.T) {
	f := setup(t)
	inv := f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "1000.00")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res := f.svc.SyncOne(ctx, inv.ID, reconcile.Options{ForceCreate: true})
		if res.Outcome != reconcile.OutcomeCreated {
			t.Fatalf("forced sync #%d outcome = %s (%s)", i+1, res.Outcome, res.Reason)
		}
	}
	movements, _ := f.store.MovementsByCompany(ctx, f.companyID)
	if len(movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(movements))
	}
}

func TestSyncOne_PolicySkip(t *testing.T) {
	f := setup(t)
	for _, dir := range []ledger.Direction{ledger.DirectionOutgoing, ledger.DirectionIncoming} {
		inv := f.seedInvoice(t, dir, ledger.InvoiceTypeSelfBilled, "999.99")
		res := f.svc.SyncOne(context.Background(), inv.ID, reconcile.Options{})
		if res.Outcome != reconcile.OutcomeSkipped {
			t.Fatalf("self-billed %s outcome = %s, want skipped", dir, res.Outcome)
		}
		if res.Reason != "auto-invoice already accounted for" {
			t.Fatalf("reason = %q", res.Reason)
		}
	}
	movements, _ := f.store.MovementsByCompany(context.Background(), f.companyID)
	if len(movements) != 0 {
		t.Fatalf("movements = %d, want 0", len(movements))
	}
}

func TestSyncOne_SignInvariants(t *testing.T) {
	cases := []struct {
		name       string
		dir        ledger.Direction
		typ        ledger.InvoiceType
		total      string
		wantType   ledger.MovementType
		wantAmount string
	}{
		{"outgoing standard", ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "1000.00", ledger.MovementTypeIncome, "1000.00"},
		{"incoming standard", ledger.DirectionIncoming, ledger.InvoiceTypeStandard, "1000.00", ledger.MovementTypeExpense, "1000.00"},
		{"incoming credit note", ledger.DirectionIncoming, ledger.InvoiceTypeCreditNote, "200.00", ledger.MovementTypeExpense, "-200.00"},
		{"outgoing credit note", ledger.DirectionOutgoing, ledger.InvoiceTypeCreditNote, "300.00", ledger.MovementTypeIncome, "-300.00"},
		{"incoming debit note", ledger.DirectionIncoming, ledger.InvoiceTypeDebitNote, "50.00", ledger.MovementTypeExpense, "50.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			inv := f.seedInvoice(t, tc.dir, tc.typ, tc.total)
			res := f.svc.SyncOne(context.Background(), inv.ID, reconcile.Options{})
			if res.Outcome != reconcile.OutcomeCreated {
				t.Fatalf("outcome = %s (%s)", res.Outcome, res.Reason)
			}
			if res.Movement.Type != tc.wantType {
				t.Fatalf("movement type = %s, want %s", res.Movement.Type, tc.wantType)
			}
			if !res.Movement.Amount.Equal(dec(tc.wantAmount)) {
				t.Fatalf("amount = %s, want %s", res.Movement.Amount, tc.wantAmount)
			}
		})
	}
}

func TestSyncOne_ValidationFields(t *testing.T) {
	f := setup(t)
	inv := ledger.Invoice{
		ID:     uuid.New(),
		Number: "BROKEN",
		Date:   time.Now().UTC(),
		// no company, no direction, no type, zero amount
	}
	f.store.SeedInvoice(inv)
	res := f.svc.SyncOne(context.Background(), inv.ID, reconcile.Options{})
	if res.Outcome != reconcile.OutcomeError {
		t.Fatalf("outcome = %s, want error", res.Outcome)
	}
	if len(res.Fields) != 4 {
		t.Fatalf("fields = %+v, want 4 entries", res.Fields)
	}
	seen := map[string]bool{}
	for _, fe := range res.Fields {
		seen[fe.Field] = true
	}
	for _, want := range []string{"company_id", "direction", "invoice_type", "total_amount"} {
		if !seen[want] {
			t.Fatalf("missing field error for %s: %+v", want, res.Fields)
		}
	}
}

func TestSyncOne_DefaultsAndOverrides(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv := f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "100.00")
	res := f.svc.SyncOne(ctx, inv.ID, reconcile.Options{})
	if res.Outcome != reconcile.OutcomeCreated {
		t.Fatalf("outcome = %s (%s)", res.Outcome, res.Reason)
	}
	if res.Movement.CoreID != f.companyID {
		t.Fatalf("core id = %s, want company fallback %s", res.Movement.CoreID, f.companyID)
	}
	if res.Movement.StatusID != f.statusID {
		t.Fatalf("status id = %s, want default %s", res.Movement.StatusID, f.statusID)
	}
	if res.Movement.VatCodeID != f.vatCodeID {
		t.Fatalf("vat code id = %s, want %s", res.Movement.VatCodeID, f.vatCodeID)
	}
	if res.Movement.SourceInvoiceID == nil || *res.Movement.SourceInvoiceID != inv.ID {
		t.Fatalf("source invoice id = %v, want %s", res.Movement.SourceInvoiceID, inv.ID)
	}

	core, status := uuid.New(), uuid.New()
	inv2 := f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "100.00")
	res2 := f.svc.SyncOne(ctx, inv2.ID, reconcile.Options{ForceCreate: true, CoreID: &core, StatusID: &status, Notes: "manual check"})
	if res2.Outcome != reconcile.OutcomeCreated {
		t.Fatalf("outcome = %s (%s)", res2.Outcome, res2.Reason)
	}
	if res2.Movement.CoreID != core || res2.Movement.StatusID != status {
		t.Fatalf("overrides not applied: core=%s status=%s", res2.Movement.CoreID, res2.Movement.StatusID)
	}
}

func TestSyncOne_HeuristicLinkage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	inv := f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "750.00")

	// A manually entered movement with no source reference but matching
	// company, amount and calendar day counts as linked.
	f.store.SeedMovement(ledger.Movement{
		ID:        uuid.New(),
		CompanyID: f.companyID,
		Type:      ledger.MovementTypeIncome,
		Amount:    dec("750.00"),
		CoreID:    f.companyID,
		StatusID:  f.statusID,
		Date:      inv.Date,
	})
	res := f.svc.SyncOne(ctx, inv.ID, reconcile.Options{})
	if res.Outcome != reconcile.OutcomeSkipped {
		t.Fatalf("outcome = %s, want skipped via heuristic", res.Outcome)
	}

	// A different amount on the same day does not match.
	inv2 := f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "750.01")
	res2 := f.svc.SyncOne(ctx, inv2.ID, reconcile.Options{})
	if res2.Outcome != reconcile.OutcomeCreated {
		t.Fatalf("outcome = %s (%s), want created", res2.Outcome, res2.Reason)
	}
}

func TestSyncMany_BulkIsolation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	good1 := f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "10.00")
	bad := ledger.Invoice{ID: uuid.New(), CompanyID: f.companyID, Number: "BAD", Date: time.Now().UTC()}
	f.store.SeedInvoice(bad)
	good2 := f.seedInvoice(t, ledger.DirectionIncoming, ledger.InvoiceTypeStandard, "20.00")

	sum := f.svc.SyncMany(ctx, []uuid.UUID{good1.ID, bad.ID, good2.ID}, reconcile.Options{})
	if sum.Total != 3 || sum.Created != 2 || sum.Errored != 1 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	// Input order preserved.
	if sum.Results[0].InvoiceID != good1.ID || sum.Results[1].InvoiceID != bad.ID || sum.Results[2].InvoiceID != good2.ID {
		t.Fatalf("results out of order: %+v", sum.Results)
	}
	if sum.Results[1].Outcome != reconcile.OutcomeError {
		t.Fatalf("middle result outcome = %s, want error", sum.Results[1].Outcome)
	}
}

func TestSyncAllExisting_Rerunnable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.seedInvoice(t, ledger.DirectionOutgoing, ledger.InvoiceTypeStandard, "100.00")
	}
	f.seedInvoice(t, ledger.DirectionIncoming, ledger.InvoiceTypeSelfBilled, "50.00")

	first, err := f.svc.SyncAllExisting(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Created != 5 || first.Skipped != 1 || first.Errored != 0 {
		t.Fatalf("first summary = %+v", first)
	}

	second, err := f.svc.SyncAllExisting(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Created != 0 || second.Skipped != 6 {
		t.Fatalf("second summary = %+v", second)
	}
	movements, _ := f.store.MovementsByCompany(ctx, f.companyID)
	if len(movements) != 5 {
		t.Fatalf("movements = %d, want 5", len(movements))
	}
}

func TestSyncOne_UnknownInvoice(t *testing.T) {
	f := setup(t)
	res := f.svc.SyncOne(context.Background(), uuid.New(), reconcile.Options{})
	if res.Outcome != reconcile.OutcomeError {
		t.Fatalf("outcome = %s, want error", res.Outcome)
	}
}
