// Package password implements one-way password hashing with bcrypt. The
// digest embeds the cost factor, so verification needs no configuration and
// stored digests can be detected as below the current policy.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords. The zero value is not usable;
// construct with NewHasher.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside the
// bcrypt-supported range are rejected.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash produces a salted digest of password. Each call uses a fresh random
// salt, so two calls on the same password produce different digests.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must be a non-empty string")
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. A malformed or
// unrecognized digest counts as no match rather than an error, so a caller
// cannot distinguish a wrong password from a corrupt record.
func (h *Hasher) Verify(password, digest string) bool {
	if password == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// NeedsUpgrade reports whether digest was produced with a cost below the
// hasher's current cost. An unparsable digest needs an upgrade.
func (h *Hasher) NeedsUpgrade(digest string) bool {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return true
	}
	return cost < h.cost
}
