package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/adpanel/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/adpanel/internal/web/sessions/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in a SQLite database so signed-in users
// survive a process restart.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens a session store at the provided path and applies any
// pending migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, sess Session) (Session, error) {
	sess.ID = newID()
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO web_sessions (id, access_token, refresh_token, email, expires_at)
VALUES (?, ?, ?, ?, ?)`,
		sess.ID,
		sess.AccessToken,
		sess.RefreshToken,
		sess.Email,
		sess.ExpiresAt.UTC().UnixMilli(),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Session, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, access_token, refresh_token, email, expires_at
FROM web_sessions WHERE id = ?`, id)

	var sess Session
	var expiresAt int64
	err := row.Scan(&sess.ID, &sess.AccessToken, &sess.RefreshToken, &sess.Email, &expiresAt)
	if err == sql.ErrNoRows {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	sess.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	if time.Now().After(sess.ExpiresAt) {
		_ = s.Delete(ctx, id)
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM web_sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
