// Package credstore persists the bearer token pair in a small sqlite
// database under the user config dir. It is the sole source of truth for
// "is a session present": tokens are written and cleared as a pair, in one
// transaction, so a half-present pair is never a valid state.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dianegit/develops-task-management/internal/model"

	_ "modernc.org/sqlite"
)

const (
	slotAccessToken  = "access_token"
	slotRefreshToken = "refresh_token"
)

// ErrNoCredentials is returned by Load when no token pair is stored.
var ErrNoCredentials = errors.New("no stored credentials")

type Store struct {
	// Dir overrides the config dir (fixtures/tests). Empty means Dir().
	Dir string
}

// Dir resolves the config directory. Test/advanced override keeps unit tests
// from touching ~/.devtasks.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("DEVTASKS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".devtasks"), nil
}

func (s Store) dir() (string, error) {
	if strings.TrimSpace(s.Dir) != "" {
		return s.Dir, nil
	}
	return Dir()
}

func (s Store) path() (string, error) {
	dir, err := s.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.sqlite"), nil
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	dir, err := s.dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path, err := s.path()
	if err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage: WAL enables one writer + many
	// readers; busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS credentials (
		slot TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Load returns the stored pair, or ErrNoCredentials when the store is empty.
// A half-present pair is treated as absent and cleared.
func (s Store) Load(ctx context.Context) (model.TokenPair, error) {
	db, err := s.open(ctx)
	if err != nil {
		return model.TokenPair{}, err
	}
	defer db.Close()

	var pair model.TokenPair
	rows, err := db.QueryContext(ctx, `SELECT slot, value FROM credentials WHERE slot IN (?, ?)`, slotAccessToken, slotRefreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var slot, value string
		if err := rows.Scan(&slot, &value); err != nil {
			return model.TokenPair{}, err
		}
		switch slot {
		case slotAccessToken:
			pair.AccessToken = value
		case slotRefreshToken:
			pair.RefreshToken = value
		}
	}
	if err := rows.Err(); err != nil {
		return model.TokenPair{}, err
	}

	if !pair.Present() {
		if pair.AccessToken != "" || pair.RefreshToken != "" {
			// Torn state from a crashed writer; absent is the only safe reading.
			if err := s.clearLocked(ctx, db); err != nil {
				return model.TokenPair{}, err
			}
		}
		return model.TokenPair{}, ErrNoCredentials
	}
	return pair, nil
}

// Present reports whether a full token pair is stored.
func (s Store) Present(ctx context.Context) bool {
	_, err := s.Load(ctx)
	return err == nil
}

// Save stores both tokens in one transaction.
func (s Store) Save(ctx context.Context, pair model.TokenPair) error {
	if !pair.Present() {
		return fmt.Errorf("refusing to store a partial token pair")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for slot, value := range map[string]string{
		slotAccessToken:  pair.AccessToken,
		slotRefreshToken: pair.RefreshToken,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO credentials(slot, value) VALUES(?, ?)
			 ON CONFLICT(slot) DO UPDATE SET value=excluded.value`, slot, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Clear removes both tokens atomically. Clearing an empty store is not an
// error: logout must succeed regardless of prior state.
func (s Store) Clear(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return s.clearLocked(ctx, db)
}

func (s Store) clearLocked(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE slot IN (?, ?)`, slotAccessToken, slotRefreshToken)
	return err
}
