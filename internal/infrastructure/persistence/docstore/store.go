// Package docstore provides the SQL-backed JSON document store used by every
// kiosk collection (careers, conversion_funnel, sessions, page_transitions,
// heatmap_clicks, leads, tuition).
//
// PURPOSE: One JSON document per row in the documents table; filtering goes
// through json_extract so callers never write SQL themselves.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/database"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/security"
	"github.com/lannapoly/pathfinder-go/pkg/config"
)

// Record is one stored document together with its envelope fields.
type Record struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Decode unmarshals the record payload into v.
func (r *Record) Decode(v any) error {
	return json.Unmarshal(r.Payload, v)
}

// Filter matches one top-level JSON field against a value.
type Filter struct {
	Field string // JSON field name, e.g. "sessionId"
	Value any
}

// Query shapes a Read call.
type Query struct {
	Filters   []Filter
	OrderBy   string // JSON field to order by; empty means created_at
	Desc      bool
	Limit     int // 0 means no limit
}

// Store is the persistence boundary for all kiosk collections.
type Store interface {
	Append(ctx context.Context, collection string, doc any) (string, error)
	Read(ctx context.Context, collection string, q Query) ([]Record, error)
	Update(ctx context.Context, collection, id string, partial any) error
}

// SQLStore implements Store over the shared documents table.
type SQLStore struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLStore creates a new instance of the store.
func NewSQLStore(db *database.DB, logger *logging.ChanneledLogger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger,
	}
}

// Append inserts one document and returns its generated ID.
func (s *SQLStore) Append(ctx context.Context, collection string, doc any) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document for %s: %w", collection, err)
	}

	id := security.GenerateULID()
	const query = `INSERT INTO documents (id, collection, payload, created_at) VALUES (?, ?, ?, ?)`

	start := time.Now()
	s.logger.Database().Debug("Executing document insert",
		"collection", collection,
		"documentId", id)

	_, err = s.db.ExecContext(ctx, query, id, collection, string(payload),
		time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		s.logger.Database().Error("Document insert failed",
			"error", err.Error(),
			"collection", collection,
			"documentId", id)
		return "", fmt.Errorf("failed to append document to %s: %w", collection, err)
	}

	duration := time.Since(start)
	s.logger.Database().Info("Document insert completed",
		"collection", collection,
		"documentId", id,
		"duration", duration)
	if duration > config.SlowQueryThreshold {
		s.logger.LogSlowQuery(query, duration)
	}
	return id, nil
}

// Read returns the documents of a collection matching the query.
func (s *SQLStore) Read(ctx context.Context, collection string, q Query) ([]Record, error) {
	query := `SELECT id, collection, payload, created_at FROM documents WHERE collection = ?`
	args := []any{collection}

	for _, f := range q.Filters {
		query += fmt.Sprintf(" AND json_extract(payload, '$.%s') = ?", f.Field)
		args = append(args, f.Value)
	}

	if q.OrderBy != "" {
		query += fmt.Sprintf(" ORDER BY json_extract(payload, '$.%s')", q.OrderBy)
	} else {
		query += " ORDER BY created_at"
	}
	if q.Desc {
		query += " DESC"
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	start := time.Now()
	s.logger.Database().Debug("Executing document query",
		"collection", collection,
		"filterCount", len(q.Filters),
		"limit", q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Database().Error("Document query failed",
			"error", err.Error(),
			"collection", collection)
		return nil, fmt.Errorf("failed to read documents from %s: %w", collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var payload string
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Collection, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan document from %s: %w", collection, err)
		}
		rec.Payload = json.RawMessage(payload)
		if ts, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents from %s: %w", collection, err)
	}

	duration := time.Since(start)
	database.CheckAndLogSlowQuery(s.logger, query, duration)
	return records, nil
}

// Update merges partial into the stored payload of one document. Top-level
// fields of partial overwrite the stored values via json_patch.
func (s *SQLStore) Update(ctx context.Context, collection, id string, partial any) error {
	patch, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to marshal patch for %s/%s: %w", collection, id, err)
	}

	const query = `UPDATE documents SET payload = json_patch(payload, ?) WHERE collection = ? AND id = ?`

	start := time.Now()
	s.logger.Database().Debug("Executing document update",
		"collection", collection,
		"documentId", id)

	result, err := s.db.ExecContext(ctx, query, string(patch), collection, id)
	if err != nil {
		s.logger.Database().Error("Document update failed",
			"error", err.Error(),
			"collection", collection,
			"documentId", id)
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("document %s/%s not found: %w", collection, id, sql.ErrNoRows)
	}

	duration := time.Since(start)
	database.CheckAndLogSlowQuery(s.logger, query, duration)
	return nil
}
