// Package database provides kiosk schema instantiation
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lannapoly/pathfinder-go/internal/domain/catalog"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/security"
)

// TableCreator handles the creation of the kiosk database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the kiosk's tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedInitialContent adds the default documents required for a fresh kiosk to function.
func (tc *TableCreator) SeedInitialContent(db *sql.DB) error {
	// Idempotently seed the career catalog.
	var careerCount int
	err := db.QueryRow("SELECT COUNT(*) FROM documents WHERE collection = 'careers'").Scan(&careerCount)
	if err != nil {
		return fmt.Errorf("failed to check for career catalog: %w", err)
	}

	if careerCount == 0 {
		for _, category := range catalog.Default().All() {
			payload, err := json.Marshal(category)
			if err != nil {
				return fmt.Errorf("failed to marshal career category %s: %w", category.ID, err)
			}
			_, err = db.Exec(`INSERT INTO documents (id, collection, payload) VALUES (?, 'careers', ?)`,
				security.GenerateULID(), string(payload))
			if err != nil {
				return fmt.Errorf("failed to insert career category %s: %w", category.ID, err)
			}
		}
	}

	// Idempotently seed the tuition table shown on the fees page.
	var tuitionCount int
	err = db.QueryRow("SELECT COUNT(*) FROM documents WHERE collection = 'tuition'").Scan(&tuitionCount)
	if err != nil {
		return fmt.Errorf("failed to check for tuition table: %w", err)
	}

	if tuitionCount == 0 {
		for _, row := range defaultTuition {
			payload, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to marshal tuition row: %w", err)
			}
			_, err = db.Exec(`INSERT INTO documents (id, collection, payload) VALUES (?, 'tuition', ?)`,
				security.GenerateULID(), string(payload))
			if err != nil {
				return fmt.Errorf("failed to insert tuition row: %w", err)
			}
		}
	}

	return nil
}

// The kiosk persists every collection as JSON documents in a single table.
// Filtering happens through json_extract expression indexes.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS documents (id TEXT PRIMARY KEY, collection TEXT NOT NULL, payload TEXT NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_collection_created ON documents(collection, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(collection, json_extract(payload, '$.sessionId'))`,
}

// defaultTuition mirrors the fee schedule printed on the admissions brochure.
var defaultTuition = []map[string]any{
	{"level": "vocational-certificate", "levelTh": "ปวช.", "program": "Industrial", "programTh": "ช่างอุตสาหกรรม", "tuitionPerTerm": 4500, "unit": "THB"},
	{"level": "vocational-certificate", "levelTh": "ปวช.", "program": "Commerce", "programTh": "พาณิชยกรรม", "tuitionPerTerm": 4200, "unit": "THB"},
	{"level": "high-vocational-certificate", "levelTh": "ปวส.", "program": "Industrial", "programTh": "ช่างอุตสาหกรรม", "tuitionPerTerm": 6800, "unit": "THB"},
	{"level": "high-vocational-certificate", "levelTh": "ปวส.", "program": "Commerce", "programTh": "พาณิชยกรรม", "tuitionPerTerm": 6200, "unit": "THB"},
}
