// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package login

// # Request Fields

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// # Input Constraints

const (
	// MaxEmailLength matches the width of the email columns.
	MaxEmailLength = 255

	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)
