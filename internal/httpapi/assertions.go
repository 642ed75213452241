package httpapi

import (
	"github.com/lbianchi/primanota/internal/storage/memory"
	"github.com/lbianchi/primanota/internal/storage/postgres"
)

// Compile-time interface assertions for the stores against HTTP API interfaces.
var (
	_ Repository   = (*memory.Store)(nil)
	_ Repository   = (*postgres.Store)(nil)
	_ ReadyChecker = (*postgres.Store)(nil)
)
