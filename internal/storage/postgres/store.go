package postgres

// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the engine and the
// HTTP API.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under db/migrations. This package focuses on mapping between
// the domain entities and SQL rows.

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/errs"
	"github.com/lbianchi/primanota/internal/ledger"
	"github.com/lbianchi/primanota/internal/meta"
	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string. Numeric
// columns map to decimal.Decimal via the shopspring adapter.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// SeedDev inserts a company, the common VAT codes and a couple of invoices
// for quick local testing.
func (s *Store) SeedDev(ctx context.Context) (ledger.Company, []ledger.VatCode, []ledger.Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Company{}, nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	company := ledger.Company{ID: uuid.New(), Name: "Dev Srl"}
	if _, err := tx.Exec(ctx, `insert into companies (id, name) values ($1, $2)`, company.ID, company.Name); err != nil {
		return ledger.Company{}, nil, nil, err
	}

	ordinary := ledger.VatCode{ID: uuid.New(), Code: "22", Percentage: decimal.NewFromInt(22), Description: "Aliquota ordinaria"}
	reduced := ledger.VatCode{ID: uuid.New(), Code: "10", Percentage: decimal.NewFromInt(10), Description: "Aliquota ridotta"}
	exempt := ledger.VatCode{ID: uuid.New(), Code: "N2.2", Natura: "N2.2", Description: "Non soggette"}
	codes := []ledger.VatCode{ordinary, reduced, exempt}
	for _, v := range codes {
		if _, err := tx.Exec(ctx, `
			insert into vat_codes (id, code, percentage, natura, description)
			values ($1,$2,$3,$4,$5)
		`, v.ID, v.Code, v.Percentage, v.Natura, v.Description); err != nil {
			return ledger.Company{}, nil, nil, err
		}
	}

	invoices := devInvoices(company.ID, ordinary.ID)
	for _, inv := range invoices {
		if err := insertInvoice(ctx, tx, inv); err != nil {
			return ledger.Company{}, nil, nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Company{}, nil, nil, err
	}
	return company, codes, invoices, nil
}

// --- Invoice reads ---

// InvoiceByID returns an invoice with lines populated.
func (s *Store) InvoiceByID(ctx context.Context, id uuid.UUID) (ledger.Invoice, error) {
	var inv ledger.Invoice
	err := s.pool.QueryRow(ctx, `
		select id, company_id, direction, invoice_type, number, date, total_amount
		from invoices
		where id = $1
	`, id).Scan(&inv.ID, &inv.CompanyID, &inv.Direction, &inv.Type, &inv.Number, &inv.Date, &inv.TotalAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Invoice{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Invoice{}, err
	}
	rows, err := s.pool.Query(ctx, `
		select id, coalesce(vat_code_id, '00000000-0000-0000-0000-000000000000'::uuid), taxable
		from invoice_lines
		where invoice_id = $1
		order by id asc
	`, id)
	if err != nil {
		return ledger.Invoice{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ln ledger.InvoiceLine
		if err := rows.Scan(&ln.ID, &ln.VatCodeID, &ln.Taxable); err != nil {
			return ledger.Invoice{}, err
		}
		inv.Lines = append(inv.Lines, ln)
	}
	return inv, rows.Err()
}

// Invoices returns invoices ordered by (date, id) with lines populated,
// honoring the filter's company scope and Limit/Offset paging.
func (s *Store) Invoices(ctx context.Context, f reconcile.InvoiceFilter) ([]ledger.Invoice, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		select id, company_id, direction, invoice_type, number, date, total_amount
		from invoices
		where ($1::uuid = '00000000-0000-0000-0000-000000000000'::uuid or company_id = $1)
		order by date asc, id asc
		limit $2 offset $3
	`, f.CompanyID, limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	invoices := make([]ledger.Invoice, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var inv ledger.Invoice
		if err := rows.Scan(&inv.ID, &inv.CompanyID, &inv.Direction, &inv.Type, &inv.Number, &inv.Date, &inv.TotalAmount); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
		ids = append(ids, inv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return invoices, nil
	}
	lineRows, err := s.pool.Query(ctx, `
		select invoice_id, id, coalesce(vat_code_id, '00000000-0000-0000-0000-000000000000'::uuid), taxable
		from invoice_lines
		where invoice_id = any($1)
		order by id asc
	`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	idx := make(map[uuid.UUID]*ledger.Invoice, len(invoices))
	for i := range invoices {
		idx[invoices[i].ID] = &invoices[i]
	}
	for lineRows.Next() {
		var invoiceID uuid.UUID
		var ln ledger.InvoiceLine
		if err := lineRows.Scan(&invoiceID, &ln.ID, &ln.VatCodeID, &ln.Taxable); err != nil {
			return nil, err
		}
		if inv := idx[invoiceID]; inv != nil {
			inv.Lines = append(inv.Lines, ln)
		}
	}
	return invoices, lineRows.Err()
}

// --- VAT codes ---

// VatCodeByID fetches a single VAT code.
func (s *Store) VatCodeByID(ctx context.Context, id uuid.UUID) (ledger.VatCode, error) {
	var v ledger.VatCode
	err := s.pool.QueryRow(ctx, `
		select id, code, percentage, natura, description
		from vat_codes
		where id = $1
	`, id).Scan(&v.ID, &v.Code, &v.Percentage, &v.Natura, &v.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.VatCode{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.VatCode{}, err
	}
	return v, nil
}

// VatCodes lists all VAT codes.
func (s *Store) VatCodes(ctx context.Context) ([]ledger.VatCode, error) {
	rows, err := s.pool.Query(ctx, `
		select id, code, percentage, natura, description
		from vat_codes
		order by code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.VatCode, 0)
	for rows.Next() {
		var v ledger.VatCode
		if err := rows.Scan(&v.ID, &v.Code, &v.Percentage, &v.Natura, &v.Description); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// --- Movements ---

// MovementsByCompany returns all movements for a company in insertion order.
func (s *Store) MovementsByCompany(ctx context.Context, companyID uuid.UUID) ([]ledger.Movement, error) {
	rows, err := s.pool.Query(ctx, `
		select id, company_id, type, amount, core_id, status_id, reason_id,
		       coalesce(vat_code_id, '00000000-0000-0000-0000-000000000000'::uuid),
		       source_invoice_id, date, notes, metadata
		from movements
		where company_id = $1
		order by created_at asc, id asc
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Movement, 0)
	for rows.Next() {
		var m ledger.Movement
		var mdBytes []byte
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Type, &m.Amount, &m.CoreID, &m.StatusID, &m.ReasonID,
			&m.VatCodeID, &m.SourceInvoiceID, &m.Date, &m.Notes, &mdBytes); err != nil {
			return nil, err
		}
		if len(mdBytes) > 0 {
			var md meta.Metadata
			if err := md.UnmarshalJSON(mdBytes); err == nil {
				m.Metadata = md
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMovement inserts a movement row.
func (s *Store) CreateMovement(ctx context.Context, m ledger.Movement) (ledger.Movement, error) {
	if err := m.Metadata.Validate(); err != nil {
		return ledger.Movement{}, err
	}
	md, _ := m.Metadata.MarshalStableJSON()
	var vatCodeID *uuid.UUID
	if m.VatCodeID != uuid.Nil {
		vatCodeID = &m.VatCodeID
	}
	_, err := s.pool.Exec(ctx, `
		insert into movements (id, company_id, type, amount, core_id, status_id, reason_id,
		                       vat_code_id, source_invoice_id, date, notes, metadata)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, m.ID, m.CompanyID, m.Type, m.Amount, m.CoreID, m.StatusID, m.ReasonID,
		vatCodeID, m.SourceInvoiceID, m.Date, m.Notes, md)
	if err != nil {
		return ledger.Movement{}, err
	}
	return m, nil
}

// insertInvoice writes the invoice header and its lines within the given tx.
func insertInvoice(ctx context.Context, tx pgx.Tx, inv ledger.Invoice) error {
	if _, err := tx.Exec(ctx, `
		insert into invoices (id, company_id, direction, invoice_type, number, date, total_amount)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, inv.ID, inv.CompanyID, inv.Direction, inv.Type, inv.Number, inv.Date, inv.TotalAmount); err != nil {
		return err
	}
	for _, ln := range inv.Lines {
		var vatCodeID *uuid.UUID
		if ln.VatCodeID != uuid.Nil {
			vatCodeID = &ln.VatCodeID
		}
		if _, err := tx.Exec(ctx, `
			insert into invoice_lines (id, invoice_id, vat_code_id, taxable)
			values ($1,$2,$3,$4)
		`, ln.ID, inv.ID, vatCodeID, ln.Taxable); err != nil {
			return err
		}
	}
	return nil
}
