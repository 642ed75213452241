// Package httpapi wires the HTTP surface of the primanota service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// Server wires handlers and middleware using Chi.
// It composes read (repo) and write (writer) dependencies through the
// reconciliation service.
type Server struct {
	svc       reconcile.Service
	invoices  InvoiceReader
	movements MovementReader
	vatCodes  VatCodeReader
	log       *slog.Logger
	rt        *chi.Mux
}

// New constructs the HTTP server with routes and middleware. The logger is
// used by basic request/response logging and panic recovery.
func New(repo reconcile.Repo, writer reconcile.Writer, invoices InvoiceReader, movements MovementReader, vatCodes VatCodeReader, cfg reconcile.Config, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		svc:       reconcile.New(repo, writer, cfg, promCollector{}),
		invoices:  invoices,
		movements: movements,
		vatCodes:  vatCodes,
		rt:        r,
		log:       logger,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	// Sync (v1)
	s.rt.Post("/v1/invoices/{id}/create-movement", s.createMovement)
	s.rt.Post("/v1/invoices/bulk-create-movements", s.bulkCreateMovements)
	s.rt.Post("/v1/invoices/sync-existing", s.syncExisting)
	// VAT (v1)
	s.rt.Post("/v1/vat/calculate", s.vatCalculate)
	s.rt.Get("/v1/vat-codes", s.listVatCodes)
	// Reads (v1)
	s.rt.Get("/v1/invoices", s.listInvoices)
	s.rt.Get("/v1/invoices/{id}", s.getInvoice)
	s.rt.Get("/v1/movements", s.listMovements)
	// Unversioned aliases for convenience/tests
	s.rt.Post("/invoices/{id}/create-movement", s.createMovement)
	s.rt.Post("/invoices/bulk-create-movements", s.bulkCreateMovements)
	s.rt.Post("/invoices/sync-existing", s.syncExisting)
	s.rt.Post("/vat/calculate", s.vatCalculate)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
