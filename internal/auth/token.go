package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenKind names the slot a bearer token authenticates against.
type TokenKind string

const (
	TokenRemember   TokenKind = "remember"
	TokenActivation TokenKind = "activation"
	TokenReset      TokenKind = "reset"
)

// tokenBytes yields 22 URL-safe characters per token.
const tokenBytes = 16

// NewToken returns a cryptographically random, URL-safe opaque token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// TokenIssuer mints tokens and digests them for storage. Only the digest
// is ever persisted; the plaintext goes back to the caller for delivery
// (cookie or email link).
type TokenIssuer struct {
	hasher *Hasher
}

func NewTokenIssuer(h *Hasher) *TokenIssuer {
	return &TokenIssuer{hasher: h}
}

// Issue generates a fresh token and returns it alongside its digest.
func (i *TokenIssuer) Issue() (token string, digest string, err error) {
	token, err = NewToken()
	if err != nil {
		return "", "", err
	}
	digest, err = i.hasher.Hash(token)
	if err != nil {
		return "", "", err
	}
	return token, digest, nil
}

// Verify reports whether the presented token matches the stored digest.
// Absent digests never verify.
func (i *TokenIssuer) Verify(storedDigest, presented string) bool {
	if storedDigest == "" {
		return false
	}
	return i.hasher.Verify(storedDigest, presented)
}
