package revocations

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// PostgresLedger stores revocation entries in the revoked_tokens table.
type PostgresLedger struct {
	db dbx.DBTX
}

// NewPostgresLedger constructs a ledger bound to the given DBTX.
func NewPostgresLedger(db dbx.DBTX) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Revoke inserts an entry; ON CONFLICT DO NOTHING makes a duplicate revoke
// of the same token id a no-op.
func (l *PostgresLedger) Revoke(ctx context.Context, entry *models.RevocationEntry) error {
	query := `
		INSERT INTO revoked_tokens (token_id, user_id, kind, reason, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_id) DO NOTHING
	`
	_, err := l.db.ExecContext(ctx, query,
		entry.TokenID, entry.UserID, entry.Kind, entry.Reason, entry.RevokedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IsRevoked fails closed: a query error yields (true, err).
func (l *PostgresLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`

	var revoked bool
	if err := l.db.QueryRowContext(ctx, query, tokenID).Scan(&revoked); err != nil {
		return true, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

// Sweep deletes entries that expired before now.
func (l *PostgresLedger) Sweep(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < $1`

	res, err := l.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
