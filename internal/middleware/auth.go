package middleware

import (
	"context"
	"net/http"

	"booking-api/internal/apperr"
	"booking-api/internal/authz"
	"booking-api/internal/httpx"
	"booking-api/internal/transport"
	"github.com/go-chi/chi/v5"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (authz.Identity, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity authz.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (authz.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(authz.Identity)
	return identity, ok
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, true)
}

// OptionalAuthenticate attaches an identity when a bearer token is sent
// but lets anonymous requests through. A token that is sent must be valid.
func OptionalAuthenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, false)
}

func authenticate(verifier TokenVerifier, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" && !required {
				next.ServeHTTP(w, r)
				return
			}

			token, err := httpx.BearerToken(r)
			if err != nil {
				transport.WriteAppError(w, nil, "authenticate", apperr.Unauthorized("Authentication required"))
				return
			}

			identity, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				transport.WriteAppError(w, nil, "authenticate", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// Authorize consults the authorization gate with the request identity and
// the {id} URL parameter as target.
func Authorize(action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var identity *authz.Identity
			if id, ok := IdentityFromContext(r.Context()); ok {
				identity = &id
			}
			if err := authz.Authorize(identity, action, chi.URLParam(r, "id")); err != nil {
				transport.WriteAppError(w, nil, "authorize", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
