package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disputekit/disputekit-server/internal/domain"
)

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store, mock
}

var sessionColumns = []string{
	"id", "session_id", "merchant", "amount", "network", "reason_code", "strategy_tips",
	"paywall_unlocked", "transaction_date", "outcome", "success_score", "created_at", "updated_at",
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestPostgresStore_RecordSession(t *testing.T) {
	store, mock := setupMockStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO dispute_sessions").
		WithArgs("s1", "Acme Corp", "$49.99", "visa", "13.1", sqlmock.AnyArg(),
			false, "2024-02-01", "pending", 80, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))

	session := sampleSession("s1", "Acme Corp", "visa")
	require.NoError(t, store.RecordSession(context.Background(), session))

	assert.Equal(t, int64(7), session.ID)
	assert.Equal(t, created, session.CreatedAt)
	assert.Equal(t, OutcomePending, session.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordSession_Error(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("INSERT INTO dispute_sessions").WillReturnError(errors.New("connection reset"))

	err := store.RecordSession(context.Background(), sampleSession("s1", "Acme", "visa"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSessions(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(sessionColumns).
		AddRow(2, "s2", "ACME Online", "$10", "visa", "10.4", "{\"Deny authorizing\",\"Report fraud\"}",
			true, "2024-02-02", "won", 95, now, now)

	mock.ExpectQuery(`FROM dispute_sessions WHERE merchant ILIKE \$1 ESCAPE '\\' AND network = \$2 AND outcome = \$3 ORDER BY created_at DESC, id DESC LIMIT \$4`).
		WithArgs("%acme%", "visa", "won", DefaultListLimit).
		WillReturnRows(rows)

	sessions, err := store.ListSessions(context.Background(), Filter{Merchant: "acme", Network: "VISA", Outcome: OutcomeWon})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].SessionID)
	assert.Equal(t, []string{"Deny authorizing", "Report fraud"}, sessions[0].StrategyTips)
	assert.Equal(t, OutcomeWon, sessions[0].Outcome)
	assert.True(t, sessions[0].PaywallUnlocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSessions_NoFilter(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`FROM dispute_sessions ORDER BY created_at DESC, id DESC LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(sessionColumns))

	sessions, err := store.ListSessions(context.Background(), Filter{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateOutcome(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("UPDATE dispute_sessions SET outcome").
		WithArgs("lost", sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE dispute_sessions SET outcome").
		WithArgs("lost", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.UpdateOutcome(context.Background(), "s1", OutcomeLost))
	err := store.UpdateOutcome(context.Background(), "missing", OutcomeLost)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Entitlements(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("INSERT INTO entitlements").
		WithArgs("pat@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("pat@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("other@example.com").
		WillReturnError(sql.ErrConnDone)

	ctx := context.Background()
	require.NoError(t, store.GrantEntitlement(ctx, "Pat@Example.com"))

	entitled, err := store.IsEntitled(ctx, " pat@example.com")
	require.NoError(t, err)
	assert.True(t, entitled)

	_, err = store.IsEntitled(ctx, "other@example.com")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
