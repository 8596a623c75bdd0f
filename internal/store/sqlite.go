package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arjunvk/mentorloop/internal/model/chat"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a SQLite-backed repository at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL for read concurrency. The pragmas ride the DSN so every pooled
	// connection gets them, and _txlock=immediate makes each transaction take
	// the write lock up front instead of failing with SQLITE_BUSY on upgrade.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

	CREATE TABLE IF NOT EXISTS turns (
		turn_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(session_id),
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_turns_session_seq ON turns(session_id, seq);

	CREATE TABLE IF NOT EXISTS quotas (
		user_id TEXT PRIMARY KEY,
		daily_count INTEGER NOT NULL,
		last_reset TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a new session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, session chat.Session) error {
	query := `
	INSERT INTO sessions (session_id, user_id, title, status, created_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.Title, session.Status, session.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	query := `
	SELECT session_id, user_id, title, status, created_at
	FROM sessions WHERE session_id = ?`

	var session chat.Session
	var createdAt int64
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID, &session.UserID, &session.Title, &session.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("scan session row: %w", err)
	}

	session.CreatedAt = time.Unix(createdAt, 0)
	return session, nil
}

// AppendTurn persists a turn after the session's current last turn.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn chat.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append turn: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE session_id = ?`, turn.SessionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	query := `
	INSERT INTO turns (turn_id, session_id, seq, role, content, created_at)
	VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?), ?, ?, ?)`

	_, err = tx.ExecContext(ctx, query,
		turn.ID, turn.SessionID, turn.SessionID, turn.Role, turn.Content, turn.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return tx.Commit()
}

// ListTurns returns a session's turns oldest first.
func (s *SQLiteStore) ListTurns(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	query := `
	SELECT turn_id, session_id, role, content, created_at
	FROM turns WHERE session_id = ? ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var turn chat.Turn
		var createdAt int64
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Role, &turn.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turn.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// GetQuota retrieves a user's quota record.
func (s *SQLiteStore) GetQuota(ctx context.Context, userID string) (chat.QuotaRecord, error) {
	var rec chat.QuotaRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, daily_count, last_reset FROM quotas WHERE user_id = ?`, userID).
		Scan(&rec.UserID, &rec.DailyCount, &rec.LastReset)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.QuotaRecord{}, ErrQuotaNotFound
	}
	if err != nil {
		return chat.QuotaRecord{}, fmt.Errorf("scan quota row: %w", err)
	}
	return rec, nil
}

// MutateQuota applies fn to the user's quota record inside one immediate
// transaction, so concurrent mutations for the same user queue on the write
// lock and cannot interleave between the read and the write.
func (s *SQLiteStore) MutateQuota(ctx context.Context, userID string, fn func(rec *chat.QuotaRecord) error) (chat.QuotaRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chat.QuotaRecord{}, fmt.Errorf("begin quota mutation: %w", err)
	}
	defer tx.Rollback()

	rec := chat.QuotaRecord{UserID: userID}
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, daily_count, last_reset FROM quotas WHERE user_id = ?`, userID).
		Scan(&rec.UserID, &rec.DailyCount, &rec.LastReset)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return chat.QuotaRecord{}, fmt.Errorf("read quota: %w", err)
	}

	if err := fn(&rec); err != nil {
		return rec, err
	}

	query := `
	INSERT INTO quotas (user_id, daily_count, last_reset)
	VALUES (?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		daily_count = excluded.daily_count,
		last_reset = excluded.last_reset`

	if _, err := tx.ExecContext(ctx, query, rec.UserID, rec.DailyCount, rec.LastReset); err != nil {
		return chat.QuotaRecord{}, fmt.Errorf("write quota: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return chat.QuotaRecord{}, fmt.Errorf("commit quota mutation: %w", err)
	}
	return rec, nil
}
