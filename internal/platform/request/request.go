// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away body decoding, client addressing and access to the guard
session loaded by middleware, ensuring consistent error handling.
*/
package requestutil

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/validate"
	"github.com/taibuivan/gatehouse/internal/session"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (used to enforce the body size limit)
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ClientIP returns the caller address without its port.

The TrustedRealIP middleware has already replaced RemoteAddr with the forwarded
address when the request came through a trusted proxy.
*/
func ClientIP(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

/*
Session extracts the guard session loaded for this request.

Returns nil if the LoadSession middleware did not run.
*/
func Session(request *http.Request) *session.Session {
	return ctxutil.GetSession(request.Context())
}

/*
RequiredPrincipal ensures guard is authenticated and returns its principal.

Returns:
  - session.Principal: The authenticated principal reference
  - error: apperr.Unauthorized if the guard holds no session
*/
func RequiredPrincipal(request *http.Request, guard session.Guard) (session.Principal, error) {

	// Get the request session
	principal, ok := Session(request).Principal(guard)

	// If the guard is not authenticated, return an error
	if !ok {
		return session.Principal{}, apperr.Unauthorized("Authentication required")
	}

	return principal, nil
}
