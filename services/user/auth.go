package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"maidbook/models"
	"maidbook/services/booking"
)

// RequestAuth is the identity of one HTTP request. It starts with the user
// id taken from the bearer token, if any, and picks up a new identity and
// token when SignIn succeeds.
type RequestAuth struct {
	svc UserService

	mu     sync.Mutex
	userID string
	token  string
}

// NewRequestAuth returns a request identity for userID ("" when anonymous).
func NewRequestAuth(svc UserService, userID string) *RequestAuth {
	return &RequestAuth{svc: svc, userID: userID}
}

// CurrentUser returns nil, nil for an anonymous request.
func (a *RequestAuth) CurrentUser(ctx context.Context) (*models.User, error) {
	a.mu.Lock()
	id := a.userID
	a.mu.Unlock()
	if id == "" {
		return nil, nil
	}
	return a.svc.GetUserByID(ctx, id)
}

// SignIn authenticates and issues a token, available from Token afterwards.
func (a *RequestAuth) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	u, err := a.svc.Authenticate(ctx, email, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, fmt.Errorf("%w: %w", booking.ErrInvalidCredentials, err)
	}
	if err != nil {
		return nil, err
	}
	token, err := a.svc.IssueToken(u)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.userID, a.token = u.ID, token
	a.mu.Unlock()
	return u, nil
}

// Token returns the token issued by a successful SignIn, if any.
func (a *RequestAuth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}
