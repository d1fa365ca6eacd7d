// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer maps Go zero values onto SQL NULL parameters.

pgx encodes a nil pointer as NULL, so optional columns are passed as pointers
built with [NilIfZero].
*/
package pointer

// NilIfZero returns nil for the zero value of T, otherwise a pointer to v.
func NilIfZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
