// Package auth identifies the signed-in user. Managers only see the
// Provider interface; the HTTP layer puts the user id on the request
// context after validating a token.
package auth

import (
	"context"
	"strings"

	"dietplanner/internal/apperr"
)

type Provider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

type contextKey struct{}

type identity struct {
	userID string
	email  string
}

func WithUser(ctx context.Context, userID, email string) context.Context {
	return context.WithValue(ctx, contextKey{}, identity{userID: userID, email: email})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(identity)
	if !ok || strings.TrimSpace(id.userID) == "" {
		return "", false
	}
	return id.userID, true
}

func EmailFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(identity)
	return id.email
}

// ContextProvider reads the user placed on the context by WithUser.
type ContextProvider struct{}

func (ContextProvider) CurrentUserID(ctx context.Context) (string, bool) {
	return UserIDFromContext(ctx)
}

// Static always reports the same user; an empty value means signed out.
type Static string

func (s Static) CurrentUserID(context.Context) (string, bool) {
	return string(s), strings.TrimSpace(string(s)) != ""
}

// Require returns the current user id or apperr.ErrUnauthenticated.
func Require(ctx context.Context, p Provider) (string, error) {
	userID, ok := p.CurrentUserID(ctx)
	if !ok {
		return "", apperr.ErrUnauthenticated
	}
	return userID, nil
}
