// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// Missing rows become NOT_FOUND for resource. Connection failures become
// SERVICE_UNAVAILABLE. Everything else is INTERNAL_ERROR with action recorded in
// the cause chain for server-side logs.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 2. Unreachable database
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return apperr.ServiceUnavailable("Database unavailable").WithCause(cause)
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(cause)
}
