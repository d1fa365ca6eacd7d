// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/session"
)

type landingResponse struct {
	Guard     session.Guard     `json:"guard"`
	Principal session.Principal `json:"principal"`
}

/*
landing serves the guard-protected entry point a destination resolves to.

GET /api/v1/admin/dashboard
GET /api/v1/staff/profile

Response:
  - 200: landingResponse: The authenticated principal of guard
  - 401: UNAUTHORIZED: guard holds no session
*/
func landing(guard session.Guard) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		principal, err := requestutil.RequiredPrincipal(request, guard)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, landingResponse{Guard: guard, Principal: principal})
	}
}
