// Package auth models the externally-resolved principal and the admin guard.
// Authentication itself happens outside this service; all the core sees is a
// stable id and email.
package auth

import (
	"context"
	"errors"
)

var ErrNoPrincipal = errors.New("no authenticated principal")

type Principal struct {
	ID    string
	Email string
}

// Identity yields the principal for the current request, or ErrNoPrincipal
// when nobody is signed in.
type Identity interface {
	CurrentPrincipal(ctx context.Context) (*Principal, error)
}

type staticIdentity struct {
	p Principal
}

// Static returns an Identity fixed to one principal. Used by worker binaries
// that run under a single service account rather than per-request identity.
func Static(id, email string) Identity {
	return &staticIdentity{p: Principal{ID: id, Email: email}}
}

func (s *staticIdentity) CurrentPrincipal(ctx context.Context) (*Principal, error) {
	if s.p.Email == "" {
		return nil, ErrNoPrincipal
	}
	p := s.p
	return &p, nil
}
