// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/identity"
	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

/*
TestPostgresAdminRepository_FindByEmail verifies admin lookups and error mapping.
*/
func TestPostgresAdminRepository_FindByEmail(t *testing.T) {
	columns := []string{"id", "email", "passwordhash", "displayname", "createdat", "updatedat"}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *identity.AdminPrincipal
		wantErr   func(t *testing.T, err error)
	}{
		{
			name: "Found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(columns).
					AddRow("a-1", "a@x.com", "$2a$hash", "Alice", fixedTime, fixedTime)
				mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+auth\.admin\s+WHERE\s+email = \$1 AND deletedat IS NULL`).
					WithArgs("a@x.com").
					WillReturnRows(rows)
			},
			want: &identity.AdminPrincipal{
				ID: "a-1", Email: "a@x.com", PasswordHash: "$2a$hash", DisplayName: "Alice",
				CreatedAt: fixedTime, UpdatedAt: fixedTime,
			},
		},
		{
			name: "Not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM auth\.admin`).
					WithArgs("a@x.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: func(t *testing.T, err error) {
				assert.True(t, apperr.IsNotFound(err))
			},
		},
		{
			name: "Database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM auth\.admin`).
					WithArgs("a@x.com").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: func(t *testing.T, err error) {
				assert.False(t, apperr.IsNotFound(err))
				assert.Contains(t, err.Error(), "unexpected error")
				assert.ErrorContains(t, errors.Unwrap(err), "connection reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := identity.NewAdminRepository(mock)
			got, err := repo.FindByEmail(context.Background(), "a@x.com")

			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				assert.True(t, got.CanAuthenticate())
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

/*
TestPostgresStaffRepository_FindByEmail verifies staff lookups keep the active flag.
*/
func TestPostgresStaffRepository_FindByEmail(t *testing.T) {
	columns := []string{"id", "email", "passwordhash", "displayname", "isactive", "createdat", "updatedat"}

	tests := []struct {
		name       string
		isActive   bool
		wantCanLog bool
	}{
		{"Active staff", true, true},
		{"Inactive staff is still returned", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			rows := pgxmock.NewRows(columns).
				AddRow("s-1", "s@x.com", "$2a$hash", "Sam", tt.isActive, fixedTime, fixedTime)
			mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+auth\.staff\s+WHERE\s+email = \$1 AND deletedat IS NULL`).
				WithArgs("s@x.com").
				WillReturnRows(rows)

			repo := identity.NewStaffRepository(mock)
			got, err := repo.FindByEmail(context.Background(), "s@x.com")

			require.NoError(t, err)
			assert.Equal(t, "s-1", got.ID)
			assert.Equal(t, tt.isActive, got.IsActive)
			assert.Equal(t, tt.wantCanLog, got.CanAuthenticate())
			assert.Equal(t, identity.Credentials{ID: "s-1", Email: "s@x.com", PasswordHash: "$2a$hash"}, got.Credentials())

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}

	t.Run("Not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM auth\.staff`).
			WithArgs("ghost@x.com").
			WillReturnError(pgx.ErrNoRows)

		_, err = identity.NewStaffRepository(mock).FindByEmail(context.Background(), "ghost@x.com")
		assert.True(t, apperr.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
