// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/dberr"
)

/*
TestWrap verifies classification of storage errors.
*/
func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "Admin", "find_admin"))

	notFound := dberr.Wrap(pgx.ErrNoRows, "Admin", "find_admin")
	assert.True(t, apperr.IsNotFound(notFound))
	assert.Equal(t, "Admin not found", notFound.Error())

	boom := errors.New("syntax error")
	internal := dberr.Wrap(boom, "Admin", "find_admin")
	ae := apperr.As(internal)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeInternal, ae.Code)
	assert.ErrorIs(t, internal, boom)
	assert.Contains(t, ae.Cause.Error(), "find_admin")
}
