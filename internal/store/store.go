// Package store provides focused, single-concern data access stores for the
// coliving backend.
//
// The audit log and reminder stores persist to the hosted key-value service
// via the kv.Store adapter; payment and tenant records live in PostgreSQL.
// Stores never import each other; shared helpers live in this file.
package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/kv"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for KV-backed stores.
// Embed this in each store struct.
type Base struct {
	KV  kv.Store
	Log *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}
