// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package login

import (
	"context"

	"github.com/taibuivan/gatehouse/internal/identity"
	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/session"
)

// Destination is a symbolic landing route resolved by the transport layer.
type Destination string

const (
	// DestinationAdminDashboard is where admins land after signing in.
	DestinationAdminDashboard Destination = "admin-dashboard"

	// DestinationStaffProfile is where staff land after signing in.
	DestinationStaffProfile Destination = "staff-profile"
)

// Authenticator is one principal type the orchestrator can try.
type Authenticator interface {
	// Guard is the session guard a successful login of this type occupies.
	Guard() session.Guard

	// Destination is the landing route after a successful login of this type.
	Destination() Destination

	// Lookup returns the principal with exactly this email, or nil when absent.
	Lookup(context context.Context, email string) (identity.Principal, error)
}

// # Admin Strategy

type adminAuthenticator struct {
	repository identity.AdminRepository
}

// NewAdminAuthenticator tries the admin identity table.
func NewAdminAuthenticator(repository identity.AdminRepository) Authenticator {
	return &adminAuthenticator{repository: repository}
}

func (authenticator *adminAuthenticator) Guard() session.Guard { return session.GuardAdmin }

func (authenticator *adminAuthenticator) Destination() Destination {
	return DestinationAdminDashboard
}

func (authenticator *adminAuthenticator) Lookup(context context.Context, email string) (identity.Principal, error) {
	admin, err := authenticator.repository.FindByEmail(context, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

// # Staff Strategy

type staffAuthenticator struct {
	repository identity.StaffRepository
}

// NewStaffAuthenticator tries the staff identity table.
func NewStaffAuthenticator(repository identity.StaffRepository) Authenticator {
	return &staffAuthenticator{repository: repository}
}

func (authenticator *staffAuthenticator) Guard() session.Guard { return session.GuardStaff }

func (authenticator *staffAuthenticator) Destination() Destination {
	return DestinationStaffProfile
}

func (authenticator *staffAuthenticator) Lookup(context context.Context, email string) (identity.Principal, error) {
	staff, err := authenticator.repository.FindByEmail(context, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return staff, nil
}
