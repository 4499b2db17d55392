package records

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL records store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w: %w", domain.ErrStoreUnavailable, err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL records store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

const pgSessionColumns = `id, session_id, merchant, amount, network, reason_code, strategy_tips,
			paywall_unlocked, transaction_date, outcome, success_score, created_at, updated_at`

// RecordSession stores or updates a dispute session.
func (s *PostgresStore) RecordSession(ctx context.Context, session *DisputeSession) error {
	if strings.TrimSpace(session.SessionID) == "" {
		return domain.NewValidationError("session_id", "session id is required", session.SessionID)
	}
	if session.Outcome == "" {
		session.Outcome = OutcomePending
	}

	now := time.Now()

	query := `
		INSERT INTO dispute_sessions (
			session_id, merchant, amount, network, reason_code, strategy_tips,
			paywall_unlocked, transaction_date, outcome, success_score,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id) DO UPDATE SET
			merchant = EXCLUDED.merchant,
			amount = EXCLUDED.amount,
			network = EXCLUDED.network,
			reason_code = EXCLUDED.reason_code,
			strategy_tips = EXCLUDED.strategy_tips,
			paywall_unlocked = EXCLUDED.paywall_unlocked,
			transaction_date = EXCLUDED.transaction_date,
			outcome = EXCLUDED.outcome,
			success_score = EXCLUDED.success_score,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		session.SessionID,
		session.Merchant,
		session.Amount,
		session.Network,
		session.ReasonCode,
		pq.Array(nonNil(session.StrategyTips)),
		session.PaywallUnlocked,
		session.TransactionDate,
		string(session.Outcome),
		session.SuccessScore,
		now,
		now,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	session.UpdatedAt = now
	return nil
}

// ListSessions returns matching sessions, newest first.
func (s *PostgresStore) ListSessions(ctx context.Context, filter Filter) ([]*DisputeSession, error) {
	query := "SELECT " + pgSessionColumns + " FROM dispute_sessions"

	var where []string
	var args []interface{}
	if filter.Merchant != "" {
		args = append(args, containsPattern(filter.Merchant))
		where = append(where, fmt.Sprintf(`merchant ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if filter.Network != "" {
		args = append(args, domain.NormalizeNetwork(filter.Network))
		where = append(where, fmt.Sprintf("network = $%d", len(args)))
	}
	if filter.Outcome != "" {
		args = append(args, string(filter.Outcome))
		where = append(where, fmt.Sprintf("outcome = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.limit())
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var result []*DisputeSession
	for rows.Next() {
		ds := &DisputeSession{}
		var outcome string

		err := rows.Scan(
			&ds.ID, &ds.SessionID, &ds.Merchant, &ds.Amount, &ds.Network, &ds.ReasonCode,
			pq.Array(&ds.StrategyTips), &ds.PaywallUnlocked, &ds.TransactionDate, &outcome,
			&ds.SuccessScore, &ds.CreatedAt, &ds.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		ds.Outcome = Outcome(outcome)
		result = append(result, ds)
	}

	return result, rows.Err()
}

// UpdateOutcome sets the outcome of a recorded session.
func (s *PostgresStore) UpdateOutcome(ctx context.Context, sessionID string, outcome Outcome) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE dispute_sessions SET outcome = $1, updated_at = $2 WHERE session_id = $3",
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
func (s *PostgresStore) GrantEntitlement(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("email", "email is required", email)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO entitlements (email, granted_at) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING",
		email, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to grant entitlement: %w", err)
	}
	return nil
}

// IsEntitled reports whether an email address has unlocked the paywall.
func (s *PostgresStore) IsEntitled(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM entitlements WHERE email = $1)", email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return exists, nil
}

// ExportJSON exports all sessions to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.ListSessions(ctx, Filter{Limit: maxExportLimit})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	return writeExport(writer, all)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
