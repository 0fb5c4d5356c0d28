package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"huntx-client/internal/models"
)

// Fixed keys of the persisted client state.
const (
	KeyToken       = "token"
	KeyRole        = "role"
	KeyUserID      = "userId"
	KeyDisplayName = "displayName"
	KeyTheme       = "theme"
)

var sessionKeys = []string{KeyToken, KeyRole, KeyUserID, KeyDisplayName, KeyTheme}

// SessionRepository persists the session in durable local storage.
type SessionRepository interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Clear(ctx context.Context) error
}

// SessionRepo is a sqlx implementation of SessionRepository backed by the
// client_state key/value table.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

type stateRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Load returns the persisted session. Missing keys are left empty.
func (r *SessionRepo) Load(ctx context.Context) (models.Session, error) {
	query, args, err := sqlx.In(`SELECT key, value FROM client_state WHERE key IN (?)`, sessionKeys)
	if err != nil {
		return models.Session{}, err
	}
	var rows []stateRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return models.Session{}, err
	}

	var s models.Session
	for _, row := range rows {
		switch row.Key {
		case KeyToken:
			s.Token = row.Value
		case KeyRole:
			s.Role = models.Role(row.Value)
		case KeyUserID:
			s.UserID = row.Value
		case KeyDisplayName:
			s.DisplayName = row.Value
		case KeyTheme:
			s.Theme = models.Theme(row.Value)
		}
	}
	return s, nil
}

// Save writes every session key in one transaction.
func (r *SessionRepo) Save(ctx context.Context, session models.Session) error {
	values := map[string]string{
		KeyToken:       session.Token,
		KeyRole:        string(session.Role),
		KeyUserID:      session.UserID,
		KeyDisplayName: session.DisplayName,
		KeyTheme:       string(session.Theme),
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	upsert := tx.Rebind(`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`)
	for _, key := range sessionKeys {
		if _, err := tx.ExecContext(ctx, upsert, key, values[key]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Clear removes every session key in one statement.
func (r *SessionRepo) Clear(ctx context.Context) error {
	query, args, err := sqlx.In(`DELETE FROM client_state WHERE key IN (?)`, sessionKeys)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
