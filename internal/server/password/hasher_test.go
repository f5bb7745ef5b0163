package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	// MinCost keeps the test suite fast; production cost comes from config.
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	return h
}

func TestNewHasher_CostRange(t *testing.T) {
	t.Parallel()

	if _, err := NewHasher(bcrypt.MinCost - 1); err == nil {
		t.Fatalf("expected error for cost below minimum")
	}
	if _, err := NewHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("expected error for cost above maximum")
	}
	if _, err := NewHasher(12); err != nil {
		t.Fatalf("NewHasher(12) error: %v", err)
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)

	d1, err := h.Hash("Abcdef1!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	d2, err := h.Hash("Abcdef1!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if d1 == d2 {
		t.Fatalf("two hashes of the same password must differ")
	}
	if !h.Verify("Abcdef1!", d1) || !h.Verify("Abcdef1!", d2) {
		t.Fatalf("both digests must verify against the original password")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	if _, err := h.Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	d, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h.Verify("battery-staple", d) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestVerify_MalformedDigest(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	if h.Verify("anything", "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest must count as no match")
	}
	if h.Verify("anything", "") {
		t.Fatalf("empty digest must count as no match")
	}
}

func TestNeedsUpgrade(t *testing.T) {
	t.Parallel()

	low, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	d, err := low.Hash("pw-one-two")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	high, err := NewHasher(bcrypt.MinCost + 2)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if low.NeedsUpgrade(d) {
		t.Fatalf("digest at current cost must not need an upgrade")
	}
	if !high.NeedsUpgrade(d) {
		t.Fatalf("digest below target cost must need an upgrade")
	}
	if !high.NeedsUpgrade("garbage") {
		t.Fatalf("unparsable digest must need an upgrade")
	}
}
