// Package docstore provides the resilient write helper shared by all
// fire-and-forget analytics paths.
package docstore

import (
	"context"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
)

// ResilientWriter wraps a Store so that callers on the kiosk hot path never
// see a persistence error. Failures are logged on the database channel and
// swallowed; the visitor experience must not depend on analytics writes.
type ResilientWriter struct {
	store  Store
	logger *logging.ChanneledLogger
}

// NewResilientWriter creates a new resilient writer over the given store.
func NewResilientWriter(store Store, logger *logging.ChanneledLogger) *ResilientWriter {
	return &ResilientWriter{
		store:  store,
		logger: logger,
	}
}

// Append writes one document, logging and discarding any error. The document
// ID is returned when the write succeeds, otherwise an empty string.
func (w *ResilientWriter) Append(ctx context.Context, collection string, doc any) string {
	id, err := w.store.Append(ctx, collection, doc)
	if err != nil {
		w.logger.LogError(logging.ChannelDatabase, "resilient_append", err, map[string]any{
			"collection": collection,
		})
		return ""
	}
	return id
}

// Update patches one document, logging and discarding any error.
func (w *ResilientWriter) Update(ctx context.Context, collection, id string, partial any) {
	if err := w.store.Update(ctx, collection, id, partial); err != nil {
		w.logger.LogError(logging.ChannelDatabase, "resilient_update", err, map[string]any{
			"collection": collection,
			"documentId": id,
		})
	}
}

// Store exposes the underlying store for read paths that do need errors.
func (w *ResilientWriter) Store() Store {
	return w.store
}
