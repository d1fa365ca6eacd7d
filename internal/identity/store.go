// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
)

// # Principal Data Access

// AdminRepository defines the read contract for admin accounts.
type AdminRepository interface {

	/*
		FindByEmail returns the live admin account with exactly this email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *AdminPrincipal: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*AdminPrincipal, error)
}

// StaffRepository defines the read contract for staff accounts.
type StaffRepository interface {

	/*
		FindByEmail returns the live staff account with exactly this email,
		active or not.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *StaffPrincipal: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*StaffPrincipal, error)
}
