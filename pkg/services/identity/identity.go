// Package identity carries the authenticated caller and applies the impersonation rule.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/rs/zerolog"
)

type principalKey struct{}

// WithPrincipal attaches the authenticated caller's actor id to ctx.
func WithPrincipal(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, principalKey{}, actorID)
}

func PrincipalFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}

type ActorLookup interface {
	GetActor(ctx context.Context, actorID string) (domain.ActorIdentity, error)
}

// Authorizer decides whose data a request may touch.
type Authorizer interface {
	// EffectiveActor returns the actor id a request operates on: the caller, or onBehalfOf when
	// it names someone else and the caller is an admin.
	EffectiveActor(ctx context.Context, onBehalfOf string) (string, error)
}

type authorizer struct {
	actors ActorLookup
}

func NewAuthorizer(actors ActorLookup) Authorizer {
	return &authorizer{actors: actors}
}

func (a *authorizer) EffectiveActor(ctx context.Context, onBehalfOf string) (string, error) {
	callerID, ok := PrincipalFrom(ctx)
	if !ok {
		return "", fmt.Errorf("%w: no authenticated caller", domain.ErrAuthorizationDenied)
	}
	if onBehalfOf == "" || onBehalfOf == callerID {
		return callerID, nil
	}

	caller, err := a.actors.GetActor(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: unknown caller %s", domain.ErrAuthorizationDenied, callerID)
		}
		return "", err
	}
	if !caller.IsAdmin() {
		zerolog.Ctx(ctx).Warn().
			Str("caller", callerID).
			Str("on_behalf_of", onBehalfOf).
			Msg("impersonation denied")
		return "", fmt.Errorf("%w: %s may not act on behalf of %s", domain.ErrAuthorizationDenied, callerID, onBehalfOf)
	}

	zerolog.Ctx(ctx).Info().
		Str("caller", callerID).
		Str("on_behalf_of", onBehalfOf).
		Msg("acting on behalf of another user")
	return onBehalfOf, nil
}
