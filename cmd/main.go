package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lbianchi/primanota/internal/httpapi"
	"github.com/lbianchi/primanota/internal/ledger"
	"github.com/lbianchi/primanota/internal/service/reconcile"
	"github.com/lbianchi/primanota/internal/storage/memory"
	pgstore "github.com/lbianchi/primanota/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	cfg := reconcile.Config{DefaultStatusID: defaultStatusFromEnv(logger)}

	var srvMux http.Handler
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		if devSeedEnabled() {
			company, codes, invoices, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", company, codes, invoices)
			}
		}
		srvMux = httpapi.New(pg, pg, pg, pg, pg, cfg, logger).Handler()
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store with a small dev seed
		store := memory.New()
		company, codes, invoices := seedMemory(store)
		logDevSeed(logger, "memory", company, codes, invoices)
		srvMux = httpapi.New(store, store, store, store, store, cfg, logger).Handler()
		logger.Info("storage backend: memory")
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("primanota service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// seedMemory loads a company, the common VAT codes and a few invoices so the
// sync endpoints have something to chew on out of the box.
func seedMemory(store *memory.Store) (ledger.Company, []ledger.VatCode, []ledger.Invoice) {
	company := ledger.Company{ID: uuid.New(), Name: "Dev Srl"}
	store.SeedCompany(company)
	ordinary := ledger.VatCode{ID: uuid.New(), Code: "22", Percentage: decimal.NewFromInt(22), Description: "Aliquota ordinaria"}
	reduced := ledger.VatCode{ID: uuid.New(), Code: "10", Percentage: decimal.NewFromInt(10), Description: "Aliquota ridotta"}
	exempt := ledger.VatCode{ID: uuid.New(), Code: "N2.2", Natura: "N2.2", Description: "Non soggette"}
	codes := []ledger.VatCode{ordinary, reduced, exempt}
	for _, v := range codes {
		store.SeedVatCode(v)
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)
	invoices := []ledger.Invoice{
		{
			ID: uuid.New(), CompanyID: company.ID, Direction: ledger.DirectionOutgoing,
			Type: ledger.InvoiceTypeStandard, Number: "2026/0001", Date: day.AddDate(0, 0, -2),
			TotalAmount: decimal.RequireFromString("1525.00"),
			Lines:       []ledger.InvoiceLine{{ID: uuid.New(), VatCodeID: ordinary.ID, Taxable: decimal.RequireFromString("1250.00")}},
		},
		{
			ID: uuid.New(), CompanyID: company.ID, Direction: ledger.DirectionIncoming,
			Type: ledger.InvoiceTypeStandard, Number: "FORN-88", Date: day.AddDate(0, 0, -1),
			TotalAmount: decimal.RequireFromString("610.00"),
			Lines:       []ledger.InvoiceLine{{ID: uuid.New(), VatCodeID: ordinary.ID, Taxable: decimal.RequireFromString("500.00")}},
		},
		{
			ID: uuid.New(), CompanyID: company.ID, Direction: ledger.DirectionIncoming,
			Type: ledger.InvoiceTypeCreditNote, Number: "FORN-88-NC", Date: day,
			TotalAmount: decimal.RequireFromString("200.00"),
			Lines:       []ledger.InvoiceLine{{ID: uuid.New(), VatCodeID: ordinary.ID, Taxable: decimal.RequireFromString("163.93")}},
		},
	}
	for _, inv := range invoices {
		store.SeedInvoice(inv)
	}
	return company, codes, invoices
}

// logDevSeed emits structured logs with useful IDs for copy/paste.
func logDevSeed(l *slog.Logger, backend string, company ledger.Company, codes []ledger.VatCode, invoices []ledger.Invoice) {
	vatIDs := map[string]string{}
	for _, v := range codes {
		vatIDs[v.Code] = v.ID.String()
	}
	invoiceIDs := map[string]string{}
	for _, inv := range invoices {
		invoiceIDs[inv.Number] = inv.ID.String()
	}
	l.Info("DEV seed ("+backend+")", "company_id", company.ID.String(), "vat_codes", vatIDs, "invoices", invoiceIDs)
}

func devSeedEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED"))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// defaultStatusFromEnv resolves the status assigned to generated movements.
// A fresh id is generated (and logged) when the env var is absent or invalid.
func defaultStatusFromEnv(l *slog.Logger) uuid.UUID {
	if raw := strings.TrimSpace(os.Getenv("DEFAULT_MOVEMENT_STATUS_ID")); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
		l.Warn("invalid DEFAULT_MOVEMENT_STATUS_ID, generating one")
	}
	id := uuid.New()
	l.Info("default movement status", "status_id", id.String())
	return id
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
