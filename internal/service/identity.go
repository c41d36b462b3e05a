package service

import (
	"errors"

	"quillpost/internal/domain"
)

// ErrForbidden is returned by RequireOwner for anyone but the site owner.
var ErrForbidden = errors.New("forbidden")

// Identity is the caller of a single request: anonymous when User is nil.
type Identity struct {
	User *domain.User
}

// Anonymous is the identity of a visitor without a session.
var Anonymous = Identity{}

func (i Identity) Authenticated() bool {
	return i.User != nil
}

func (i Identity) IsOwner() bool {
	return i.User.IsOwner()
}

// RequireOwner gates post authoring to the owner account.
func RequireOwner(id Identity) error {
	if !id.Authenticated() || !id.IsOwner() {
		return ErrForbidden
	}
	return nil
}
