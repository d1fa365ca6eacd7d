// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// BcryptVerifier verifies passwords against bcrypt hashes of any cost.
type BcryptVerifier struct{}

// Verify reports whether password matches hash. Malformed hashes never match.
func (BcryptVerifier) Verify(password, hash string) bool {
	return CheckPasswordHash(password, hash)
}

// generateHash is swapped in tests.
var generateHash = bcrypt.GenerateFromPassword

// NewDecoyHash returns a bcrypt hash of a random secret at the default cost.
//
// Comparing against it costs the same as a real verification and never succeeds.
func NewDecoyHash() (string, error) {
	secret, err := GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("decoy_secret_failed: %w", err)
	}
	hash, err := generateHash([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("decoy_hash_failed: %w", err)
	}
	return string(hash), nil
}

var (
	decoyOnce sync.Once
	decoyHash string
)

// DecoyHash is the lazily computed process-wide [NewDecoyHash].
//
// It panics when no hash can be produced; the decoy is never empty.
func DecoyHash() string {
	decoyOnce.Do(func() {
		hash, err := NewDecoyHash()
		if err != nil {
			panic(err)
		}
		decoyHash = hash
	})
	return decoyHash
}
