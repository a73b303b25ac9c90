package store

import (
	"context"
	"crypto/subtle"
	"math/big"

	"github.com/pkg/errors"
)

type callerKey struct{}

// ContextWithCaller attaches the identity of the publishing party to ctx.
func ContextWithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller set by ContextWithCaller.
func CallerFromContext(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(callerKey{}).(string)
	return c, ok && c != ""
}

// Authorizer decides whether a caller may publish commitments.
type Authorizer interface {
	AuthorizePublish(ctx context.Context, caller string) error
}

type allowList struct {
	callers [][]byte
}

// NewAllowList authorizes exactly the given callers.
func NewAllowList(callers ...string) Authorizer {
	a := &allowList{}
	for _, c := range callers {
		if c != "" {
			a.callers = append(a.callers, []byte(c))
		}
	}
	return a
}

func (a *allowList) AuthorizePublish(_ context.Context, caller string) error {
	found := 0
	for _, c := range a.callers {
		found |= subtle.ConstantTimeCompare(c, []byte(caller))
	}
	if caller == "" || found == 0 {
		return errors.Wrapf(ErrUnauthorizedPublish, "caller %q", caller)
	}
	return nil
}

type authorizedStore struct {
	Store
	auth Authorizer
}

// WithAuthorizer guards Publish of s. Read stays open.
func WithAuthorizer(s Store, auth Authorizer) Store {
	return &authorizedStore{Store: s, auth: auth}
}

func (s *authorizedStore) Publish(ctx context.Context, commitment *big.Int) error {
	caller, _ := CallerFromContext(ctx)
	if err := s.auth.AuthorizePublish(ctx, caller); err != nil {
		return err
	}
	return s.Store.Publish(ctx, commitment)
}
