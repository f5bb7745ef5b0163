package revocations

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// InMemoryLedger is a map-backed Ledger for tests and single-process
// deployments.
type InMemoryLedger struct {
	mu      sync.RWMutex
	entries map[string]*models.RevocationEntry
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{entries: make(map[string]*models.RevocationEntry)}
}

// Revoke records the entry; the first write for a token id wins.
func (l *InMemoryLedger) Revoke(ctx context.Context, entry *models.RevocationEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[entry.TokenID]; exists {
		return nil
	}
	c := *entry
	l.entries[entry.TokenID] = &c
	return nil
}

func (l *InMemoryLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, revoked := l.entries[tokenID]
	return revoked, nil
}

func (l *InMemoryLedger) Sweep(ctx context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int64
	for id, entry := range l.entries {
		if entry.ExpiresAt.Before(now) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed, nil
}
