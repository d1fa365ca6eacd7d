// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 generates the time-ordered identifiers of login attempt rows
// and request correlation IDs.
package uuidv7

import "github.com/google/uuid"

// New returns a UUIDv7 string.
//
// A failing v7 generator falls back to a random v4 value, so callers never see an
// error. Ordering is lost for that one value only.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsV7 reports whether s is a well-formed version 7 UUID.
func IsV7(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 7
}
