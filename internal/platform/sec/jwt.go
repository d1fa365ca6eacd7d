// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives: password hashing, random tokens
// and session cookie signing.
//
// # Architecture
//
// Security-sensitive code is isolated here and injected into the domain packages
// through small interfaces (password verifier, session signer).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrWeakSecret is returned when the session signing key is too short.
var ErrWeakSecret = errors.New("sec: session secret must be at least 32 bytes")

// SessionClaims is the payload of a signed session cookie.
//
// Only the session identifier travels to the browser. Guard slots stay server-side
// so that clearing a guard takes effect immediately.
type SessionClaims struct {
	jwt.RegisteredClaims

	SessionID string `json:"sid"`
}

// SessionSigner signs and verifies session cookies using HS256.
type SessionSigner struct {
	secret []byte
	issuer string
}

// NewSessionSigner creates a signer keyed by secret.
func NewSessionSigner(secret, issuer string) (*SessionSigner, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	return &SessionSigner{secret: []byte(secret), issuer: issuer}, nil
}

// Sign returns a compact JWT binding sessionID for timeToLive.
func (signer *SessionSigner) Sign(sessionID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    signer.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(signer.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature, issuer and expiry of a session cookie value.
func (signer *SessionSigner) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signer.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signer.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, errors.New("sec: invalid session claims")
	}

	return claims, nil
}
