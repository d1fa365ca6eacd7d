// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/gatehouse/internal/platform/database/schema"
	"github.com/taibuivan/gatehouse/internal/platform/dberr"
	"github.com/taibuivan/gatehouse/internal/platform/postgres"
)

// # Admin Repository

// PostgresAdminRepository implements AdminRepository over auth.admin.
type PostgresAdminRepository struct {
	db postgres.Querier
}

// NewAdminRepository creates a new PostgreSQL implementation of the AdminRepository.
func NewAdminRepository(db postgres.Querier) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

/*
FindByEmail retrieves an admin record from the auth.admin table.

Description: Exact match on email. Soft-deleted rows are invisible.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *AdminPrincipal: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresAdminRepository) FindByEmail(context context.Context, email string) (*AdminPrincipal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		strings.Join(schema.AuthAdmin.Columns(), ", "),
		schema.AuthAdmin.Table, schema.AuthAdmin.Email, schema.AuthAdmin.DeletedAt,
	)

	admin := &AdminPrincipal{}
	err := repository.db.QueryRow(context, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.DisplayName,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Admin", "postgres_admin_repo_find_by_email_failed")
	}

	return admin, nil
}

// # Staff Repository

// PostgresStaffRepository implements StaffRepository over auth.staff.
type PostgresStaffRepository struct {
	db postgres.Querier
}

// NewStaffRepository creates a new PostgreSQL implementation of the StaffRepository.
func NewStaffRepository(db postgres.Querier) *PostgresStaffRepository {
	return &PostgresStaffRepository{db: db}
}

/*
FindByEmail retrieves a staff record from the auth.staff table.

Description: Exact match on email. Inactive rows are returned; the caller decides
what inactivity means. Soft-deleted rows are invisible.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *StaffPrincipal: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresStaffRepository) FindByEmail(context context.Context, email string) (*StaffPrincipal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		strings.Join(schema.AuthStaff.Columns(), ", "),
		schema.AuthStaff.Table, schema.AuthStaff.Email, schema.AuthStaff.DeletedAt,
	)

	staff := &StaffPrincipal{}
	err := repository.db.QueryRow(context, query, email).Scan(
		&staff.ID,
		&staff.Email,
		&staff.PasswordHash,
		&staff.DisplayName,
		&staff.IsActive,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Staff", "postgres_staff_repo_find_by_email_failed")
	}

	return staff, nil
}
