package memory

import (
	"github.com/lbianchi/primanota/internal/service/reconcile"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ reconcile.Repo   = (*Store)(nil)
	_ reconcile.Writer = (*Store)(nil)
)
