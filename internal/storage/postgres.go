/**
 * PostgreSQL archive for frame outcomes
 *
 * Optional: the worker archives each processed frame's outcome for offline
 * inspection. The real-time pipeline never reads it back.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresClient handles database operations
type PostgresClient struct {
	db *sql.DB
}

// FrameRecord is one archived frame outcome
type FrameRecord struct {
	FrameID           string
	Orientation       string
	EngineOrientation string
	Mirrored          bool
	Outcome           interface{}
	ErrorMessage      string
	ProcessingTime    time.Duration
}

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS ocr;
	CREATE TABLE IF NOT EXISTS ocr.frame_results (
		id                 UUID PRIMARY KEY,
		frame_id           TEXT NOT NULL,
		orientation        TEXT NOT NULL,
		engine_orientation TEXT,
		mirrored           BOOLEAN NOT NULL DEFAULT FALSE,
		outcome            JSONB NOT NULL,
		error_message      TEXT,
		processing_time_ms BIGINT NOT NULL DEFAULT 0,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS frame_results_frame_id_idx ON ocr.frame_results (frame_id);
`

var (
	nullEscapePattern    = regexp.MustCompile(`\\u0000`)
	controlEscapePattern = regexp.MustCompile(`\\u00[01][0-9a-fA-F]`)
)

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(databaseURL string) (*PostgresClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	// Connect to database
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{db: db}, nil
}

// EnsureSchema creates the archive table if needed
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}

// ArchiveFrame stores one frame outcome and returns the row ID
func (p *PostgresClient) ArchiveFrame(ctx context.Context, record *FrameRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("record is required")
	}

	if record.FrameID == "" {
		return "", fmt.Errorf("frame ID is required")
	}

	outcomeJSON, err := marshalOutcome(record.Outcome)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	query := `
		INSERT INTO ocr.frame_results (
			id, frame_id, orientation, engine_orientation, mirrored,
			outcome, error_message, processing_time_ms, created_at
		) VALUES (
			$1::uuid, $2, $3, NULLIF($4, ''), $5,
			$6::jsonb, NULLIF($7, ''), $8, NOW()
		)
	`

	_, err = p.db.ExecContext(ctx, query,
		id,
		record.FrameID,
		record.Orientation,
		record.EngineOrientation,
		record.Mirrored,
		string(outcomeJSON),
		record.ErrorMessage,
		record.ProcessingTime.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to archive frame %s: %w", record.FrameID, err)
	}

	return id, nil
}

// Ping checks database connectivity
func (p *PostgresClient) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection
func (p *PostgresClient) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// GetStats returns database connection statistics
func (p *PostgresClient) GetStats() sql.DBStats {
	return p.db.Stats()
}

func marshalOutcome(outcome interface{}) ([]byte, error) {
	if outcome == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outcome: %w", err)
	}
	return sanitizeJSONForPostgres(raw), nil
}

// sanitizeJSONForPostgres removes escapes PostgreSQL JSONB rejects.
// \u0000 is dropped, other control characters become a space.
func sanitizeJSONForPostgres(jsonBytes []byte) []byte {
	result := nullEscapePattern.ReplaceAll(jsonBytes, []byte{})
	return controlEscapePattern.ReplaceAll(result, []byte(" "))
}
