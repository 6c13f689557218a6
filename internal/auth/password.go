// Package auth holds the credential primitives: bcrypt digests for
// passwords and opaque bearer tokens whose digests are stored server-side.
package auth

import "golang.org/x/crypto/bcrypt"

// Hasher produces and verifies bcrypt digests. Cost is injected so test
// configurations can run at bcrypt.MinCost.
type Hasher struct {
	Cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the salted bcrypt digest of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether candidate hashes to digest. Malformed digests
// verify as false rather than erroring.
func (h *Hasher) Verify(digest, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate)) == nil
}
