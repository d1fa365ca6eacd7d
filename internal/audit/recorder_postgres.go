// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/database/schema"
	"github.com/taibuivan/gatehouse/internal/platform/postgres"
	"github.com/taibuivan/gatehouse/pkg/pointer"
	"github.com/taibuivan/gatehouse/pkg/uuidv7"
)

// PostgresRecorder implements Recorder over auth.loginattempt.
type PostgresRecorder struct {
	db postgres.Querier
}

// NewPostgresRecorder creates a new PostgreSQL implementation of the Recorder.
func NewPostgresRecorder(db postgres.Querier) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

/*
Record inserts one row into the auth.loginattempt table.

Description: Assigns a time-sortable ID and a UTC timestamp when the caller left
them empty. Empty guard and failure reason are stored as NULL.

Parameters:
  - context: context.Context
  - attempt: LoginAttempt

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (recorder *PostgresRecorder) Record(context context.Context, attempt LoginAttempt) error {
	table := schema.AuthLoginAttempt
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		table.Table, strings.Join(table.Columns(), ", "),
	)

	// Time-sortable ID; anything else would break the uuid column
	if !uuidv7.IsV7(attempt.ID) {
		attempt.ID = uuidv7.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	_, err := recorder.db.Exec(context, query,
		attempt.ID,
		attempt.Email,
		attempt.IPAddress,
		attempt.UserAgent,
		pointer.NilIfZero(attempt.Guard),
		attempt.Successful,
		pointer.NilIfZero(string(attempt.FailureReason)),
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_login_attempt_insert_failed: %w", err)
	}

	return nil
}
