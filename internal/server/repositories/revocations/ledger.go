// Package revocations implements the revocation ledger: an append-only
// record of revoked token identifiers consulted on every verification.
package revocations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Ledger is the revocation contract. Implementations must provide two
// behaviors the orchestrator depends on:
//
//   - Revoke is idempotent: recording the same token id twice leaves the
//     ledger in the same externally observable state.
//   - IsRevoked fails closed: when the backing store cannot be consulted it
//     returns revoked=true together with the error, never a silent "assume
//     valid".
type Ledger interface {
	// Revoke records entry. Duplicate token ids are a no-op.
	Revoke(ctx context.Context, entry *models.RevocationEntry) error

	// IsRevoked reports whether the token id has been revoked. On a store
	// failure it returns (true, err).
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Sweep removes entries whose original expiry lies before now and
	// returns how many were removed. Ledger correctness does not depend
	// on sweeping; only storage growth does.
	Sweep(ctx context.Context, now time.Time) (int64, error)
}
