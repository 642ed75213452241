// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing us
// to plug in a real DB later.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lbianchi/primanota/internal/errs"
	"github.com/lbianchi/primanota/internal/ledger"
	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// invoiceKey tracks ordering for invoices: sorted asc by (Date, ID) so paged
// scans are deterministic.
type invoiceKey struct {
	Date time.Time
	ID   uuid.UUID
}

// Store is an in-memory implementation of the repository+writer used by the
// engine and the API. It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]ledger.Company
	invoices  map[uuid.UUID]ledger.Invoice
	vatCodes  map[uuid.UUID]ledger.VatCode
	movements map[uuid.UUID]ledger.Movement
	// Sorted index of invoices for ordered scans and paging.
	invoiceKeys []invoiceKey
	// Insertion order of movements per company.
	movementOrder map[uuid.UUID][]uuid.UUID
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		companies:     make(map[uuid.UUID]ledger.Company),
		invoices:      make(map[uuid.UUID]ledger.Invoice),
		vatCodes:      make(map[uuid.UUID]ledger.VatCode),
		movements:     make(map[uuid.UUID]ledger.Movement),
		movementOrder: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Seed helpers for local dev/tests.

func (s *Store) SeedCompany(c ledger.Company) { s.mu.Lock(); s.companies[c.ID] = c; s.mu.Unlock() }

func (s *Store) SeedVatCode(v ledger.VatCode) { s.mu.Lock(); s.vatCodes[v.ID] = v; s.mu.Unlock() }

func (s *Store) SeedInvoice(inv ledger.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	s.insertInvoiceIndexLocked(invoiceKey{Date: inv.Date, ID: inv.ID})
}

func (s *Store) SeedMovement(m ledger.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = m
	s.movementOrder[m.CompanyID] = append(s.movementOrder[m.CompanyID], m.ID)
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.companies = map[uuid.UUID]ledger.Company{}
	s.invoices = map[uuid.UUID]ledger.Invoice{}
	s.vatCodes = map[uuid.UUID]ledger.VatCode{}
	s.movements = map[uuid.UUID]ledger.Movement{}
	s.invoiceKeys = nil
	s.movementOrder = map[uuid.UUID][]uuid.UUID{}
	s.mu.Unlock()
}

// --- Invoice reads ---

// InvoiceByID implements reconcile.Repo.
func (s *Store) InvoiceByID(_ context.Context, id uuid.UUID) (ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return ledger.Invoice{}, errs.ErrNotFound
	}
	return inv, nil
}

// Invoices implements reconcile.Repo: ordered by (Date, ID), paged via
// Limit/Offset, optionally scoped to a company.
func (s *Store) Invoices(_ context.Context, f reconcile.InvoiceFilter) ([]ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Invoice, 0)
	skipped := 0
	for _, k := range s.invoiceKeys {
		inv, ok := s.invoices[k.ID]
		if !ok {
			continue
		}
		if f.CompanyID != uuid.Nil && inv.CompanyID != f.CompanyID {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, inv)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// --- VAT code reads ---

// VatCodeByID returns a VAT code by id.
func (s *Store) VatCodeByID(_ context.Context, id uuid.UUID) (ledger.VatCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vatCodes[id]
	if !ok {
		return ledger.VatCode{}, errs.ErrNotFound
	}
	return v, nil
}

// VatCodes lists all VAT codes sorted by code.
func (s *Store) VatCodes(_ context.Context) ([]ledger.VatCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.VatCode, 0, len(s.vatCodes))
	for _, v := range s.vatCodes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// --- Movements ---

// MovementsByCompany implements reconcile.Repo. Movements come back in
// insertion order.
func (s *Store) MovementsByCompany(_ context.Context, companyID uuid.UUID) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.movementOrder[companyID]
	out := make([]ledger.Movement, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.movements[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// CreateMovement implements reconcile.Writer.
func (s *Store) CreateMovement(_ context.Context, m ledger.Movement) (ledger.Movement, error) {
	if err := m.Metadata.Validate(); err != nil {
		return ledger.Movement{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = m
	s.movementOrder[m.CompanyID] = append(s.movementOrder[m.CompanyID], m.ID)
	return m, nil
}

// insertInvoiceIndexLocked inserts k into the sorted index, keeping order asc
// by (Date, ID). Caller must hold s.mu (write lock).
func (s *Store) insertInvoiceIndexLocked(k invoiceKey) {
	keys := s.invoiceKeys
	i := sort.Search(len(keys), func(i int) bool {
		if keys[i].Date.After(k.Date) {
			return true
		}
		if keys[i].Date.Equal(k.Date) {
			return keys[i].ID.String() > k.ID.String()
		}
		return false
	})
	if i == len(keys) {
		s.invoiceKeys = append(keys, k)
		return
	}
	keys = append(keys, invoiceKey{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	s.invoiceKeys = keys
}
