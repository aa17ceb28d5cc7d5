package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/identity"
)

var ErrMissingToken = errors.New("missing auth token")

// IdentityService is the session side of the external authentication flow:
// it caches what the login collaborator hands over and clears it on logout.
type IdentityService struct {
	Backend identity.Backend
}

func (s *IdentityService) store(sid string) *identity.Store {
	return identity.ForSession(s.Backend, sid)
}

func (s *IdentityService) SignIn(ctx context.Context, sid string, id domain.StoredIdentity) error {
	id.Token = strings.TrimSpace(id.Token)
	if id.Token == "" {
		return ErrMissingToken
	}
	return s.store(sid).SignIn(ctx, id)
}

func (s *IdentityService) SignOut(ctx context.Context, sid string) error {
	return s.store(sid).SignOut(ctx)
}

func (s *IdentityService) Current(ctx context.Context, sid string) (domain.StoredIdentity, error) {
	return s.store(sid).Load(ctx)
}
