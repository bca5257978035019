// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records completed conversions in a local SQLite database
// so earlier runs can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

const (
	appDir            = "pipenv2uv"
	dbFile            = "history.db"
	defaultMaxResults = 20

	// timeLayout is fixed width so converted_at sorts as text in time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Record is one completed conversion.
type Record struct {
	ID            string    `json:"id" yaml:"id"`
	InputPath     string    `json:"input_path" yaml:"input_path"`
	OutputPath    string    `json:"output_path" yaml:"output_path"`
	PythonVersion string    `json:"python_version" yaml:"python_version"`
	Packages      int       `json:"packages" yaml:"packages"`
	DevPackages   int       `json:"dev_packages" yaml:"dev_packages"`
	Sources       int       `json:"sources" yaml:"sources"`
	Warnings      []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	ConvertedAt   time.Time `json:"converted_at" yaml:"converted_at"`
}

// NewRecord summarizes a converted document.
func NewRecord(inputPath, outputPath string, doc types.Document, warnings []string) Record {
	return Record{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		PythonVersion: doc.Settings.PythonVersion,
		Packages:      len(doc.Dependencies()),
		DevPackages:   len(doc.DevDependencies()),
		Sources:       len(doc.Sources),
		Warnings:      warnings,
	}
}

// Store manages the history database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// DefaultPath returns ~/.config/pipenv2uv/history.db (or the platform
// equivalent of the user config directory).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, appDir, dbFile), nil
}

// Open opens or creates the history database at cfg.Path (DefaultPath when
// empty) and creates the schema if it does not exist.
func Open(cfg types.HistoryConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			python_version TEXT,
			packages INTEGER,
			dev_packages INTEGER,
			sources INTEGER,
			warnings TEXT,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_converted_at ON conversions(converted_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add stores rec, assigning an ID and timestamp when they are unset, and
// returns the stored record.
func (s *Store) Add(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ConvertedAt.IsZero() {
		rec.ConvertedAt = time.Now()
	}
	rec.ConvertedAt = rec.ConvertedAt.UTC()

	warningsJSON, err := json.Marshal(rec.Warnings)
	if err != nil {
		return Record{}, fmt.Errorf("marshaling warnings: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, input_path, output_path, python_version,
			packages, dev_packages, sources, warnings, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.InputPath, rec.OutputPath, rec.PythonVersion,
		rec.Packages, rec.DevPackages, rec.Sources, string(warningsJSON),
		rec.ConvertedAt.Format(timeLayout),
	)
	if err != nil {
		return Record{}, fmt.Errorf("inserting conversion: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first. A limit of zero or less
// uses the configured default.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, output_path, python_version, packages,
			dev_packages, sources, warnings, converted_at
		 FROM conversions
		 ORDER BY converted_at DESC, rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec          Record
			warningsJSON sql.NullString
			convertedAt  string
		)
		if err := rows.Scan(&rec.ID, &rec.InputPath, &rec.OutputPath, &rec.PythonVersion,
			&rec.Packages, &rec.DevPackages, &rec.Sources, &warningsJSON, &convertedAt); err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		if warningsJSON.Valid && warningsJSON.String != "" {
			if err := json.Unmarshal([]byte(warningsJSON.String), &rec.Warnings); err != nil {
				return nil, fmt.Errorf("scanning conversion %s warnings: %w", rec.ID, err)
			}
		}
		t, err := time.Parse(time.RFC3339Nano, convertedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion %s time: %w", rec.ID, err)
		}
		rec.ConvertedAt = t
		records = append(records, rec)
	}
	return records, rows.Err()
}
