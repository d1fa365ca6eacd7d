// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity models the two principal types that can sign in.

Admin and staff accounts live in separate tables and are never merged. The same
email may exist in both; resolving that case is the login orchestrator's job, not
this package's.

This package is read-only: principal rows are created and updated by the record
management subsystem.
*/
package identity

import (
	"time"
)

// Credentials is the part of a principal needed to verify a login.
type Credentials struct {
	ID           string
	Email        string
	PasswordHash string
}

// Principal is an identity record capable of authenticating.
type Principal interface {
	// Credentials returns the identifier, email and password hash of the record.
	Credentials() Credentials

	// CanAuthenticate reports whether account-level preconditions allow a login.
	CanAuthenticate() bool
}

// AdminPrincipal is a row of the admin identity table.
type AdminPrincipal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Credentials implements Principal.
func (admin *AdminPrincipal) Credentials() Credentials {
	return Credentials{ID: admin.ID, Email: admin.Email, PasswordHash: admin.PasswordHash}
}

// CanAuthenticate implements Principal. Admins carry no account-level precondition.
func (admin *AdminPrincipal) CanAuthenticate() bool {
	return true
}

// StaffPrincipal is a row of the staff identity table.
type StaffPrincipal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Credentials implements Principal.
func (staff *StaffPrincipal) Credentials() Credentials {
	return Credentials{ID: staff.ID, Email: staff.Email, PasswordHash: staff.PasswordHash}
}

// CanAuthenticate implements Principal. Inactive staff may not sign in.
func (staff *StaffPrincipal) CanAuthenticate() bool {
	return staff.IsActive
}
