package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite records store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteSession(s scanner) (*DisputeSession, error) {
	ds := &DisputeSession{}
	var tips, outcome string

	err := s.Scan(
		&ds.ID, &ds.SessionID, &ds.Merchant, &ds.Amount, &ds.Network, &ds.ReasonCode,
		&tips, &ds.PaywallUnlocked, &ds.TransactionDate, &outcome, &ds.SuccessScore,
		&ds.CreatedAt, &ds.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ds.Outcome = Outcome(outcome)
	if tips != "" {
		if err := json.Unmarshal([]byte(tips), &ds.StrategyTips); err != nil {
			return nil, fmt.Errorf("failed to decode strategy tips: %w", err)
		}
	}
	return ds, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS dispute_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		merchant TEXT DEFAULT '',
		amount TEXT DEFAULT '',
		network TEXT DEFAULT '',
		reason_code TEXT DEFAULT '',
		strategy_tips TEXT DEFAULT '[]',
		paywall_unlocked INTEGER NOT NULL DEFAULT 0,
		transaction_date TEXT DEFAULT '',
		outcome TEXT NOT NULL DEFAULT 'pending',
		success_score INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_network ON dispute_sessions(network);
	CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON dispute_sessions(outcome);
	CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON dispute_sessions(created_at);

	CREATE TABLE IF NOT EXISTS entitlements (
		email TEXT PRIMARY KEY,
		granted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.Exec(schema)
	return err
}

// RecordSession stores or updates a dispute session.
func (s *SQLiteStore) RecordSession(ctx context.Context, session *DisputeSession) error {
	if strings.TrimSpace(session.SessionID) == "" {
		return domain.NewValidationError("session_id", "session id is required", session.SessionID)
	}
	if session.Outcome == "" {
		session.Outcome = OutcomePending
	}
	tips, err := json.Marshal(nonNil(session.StrategyTips))
	if err != nil {
		return fmt.Errorf("failed to encode strategy tips: %w", err)
	}

	now := time.Now()

	var existingID int64
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM dispute_sessions WHERE session_id = ?",
		session.SessionID,
	).Scan(&existingID, &createdAt)

	if err == nil {
		session.ID = existingID
		session.CreatedAt = createdAt
		session.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE dispute_sessions SET
				merchant = ?,
				amount = ?,
				network = ?,
				reason_code = ?,
				strategy_tips = ?,
				paywall_unlocked = ?,
				transaction_date = ?,
				outcome = ?,
				success_score = ?,
				updated_at = ?
			WHERE id = ?
		`,
			session.Merchant, session.Amount, session.Network, session.ReasonCode,
			string(tips), session.PaywallUnlocked, session.TransactionDate,
			string(session.Outcome), session.SuccessScore, now, existingID,
		)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO dispute_sessions (
			session_id, merchant, amount, network, reason_code, strategy_tips,
			paywall_unlocked, transaction_date, outcome, success_score,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.SessionID, session.Merchant, session.Amount, session.Network,
		session.ReasonCode, string(tips), session.PaywallUnlocked,
		session.TransactionDate, string(session.Outcome), session.SuccessScore,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	session.ID = id
	return nil
}

// ListSessions returns matching sessions, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, filter Filter) ([]*DisputeSession, error) {
	query := `
		SELECT id, session_id, merchant, amount, network, reason_code, strategy_tips,
			paywall_unlocked, transaction_date, outcome, success_score, created_at, updated_at
		FROM dispute_sessions`

	var where []string
	var args []interface{}
	if filter.Merchant != "" {
		where = append(where, `LOWER(merchant) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(strings.ToLower(filter.Merchant)))
	}
	if filter.Network != "" {
		where = append(where, "network = ?")
		args = append(args, domain.NormalizeNetwork(filter.Network))
	}
	if filter.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*DisputeSession
	for rows.Next() {
		ds, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, ds)
	}
	return result, rows.Err()
}

// UpdateOutcome sets the outcome of a recorded session.
func (s *SQLiteStore) UpdateOutcome(ctx context.Context, sessionID string, outcome Outcome) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE dispute_sessions SET outcome = ?, updated_at = ? WHERE session_id = ?",
		string(outcome), time.Now(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update outcome: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return nil
}

// GrantEntitlement unlocks the paywall for an email address.
func (s *SQLiteStore) GrantEntitlement(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("email", "email is required", email)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO entitlements (email, granted_at) VALUES (?, ?)",
		email, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to grant entitlement: %w", err)
	}
	return nil
}

// IsEntitled reports whether an email address has unlocked the paywall.
func (s *SQLiteStore) IsEntitled(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entitlements WHERE email = ?", email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return count > 0, nil
}

// ExportJSON exports all sessions to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.ListSessions(ctx, Filter{Limit: maxExportLimit})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	return writeExport(writer, all)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func writeExport(writer io.Writer, sessions []*DisputeSession) error {
	if sessions == nil {
		sessions = []*DisputeSession{}
	}
	export := &SessionExport{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(sessions),
		Sessions:   sessions,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
