package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"
)

var ErrExternalTokenInvalid = errors.New("invalid external id token")

// ExternalIdentity is what an external identity provider asserts about
// the bearer of an id token.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Picture  string
}

type ExternalVerifier interface {
	Verify(ctx context.Context, idToken string) (ExternalIdentity, error)
}

type GoogleVerifier struct {
	audience string
	validate func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		audience: clientID,
		validate: idtoken.Validate,
	}
}

func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (ExternalIdentity, error) {
	if g == nil || g.audience == "" {
		return ExternalIdentity{}, errors.New("google sign-in not configured")
	}
	payload, err := g.validate(ctx, idToken, g.audience)
	if err != nil {
		return ExternalIdentity{}, errors.Join(ErrExternalTokenInvalid, err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(payload *idtoken.Payload) (ExternalIdentity, error) {
	if payload == nil || payload.Subject == "" {
		return ExternalIdentity{}, ErrExternalTokenInvalid
	}
	identity := ExternalIdentity{
		Provider: "google",
		Subject:  payload.Subject,
		Email:    claimString(payload.Claims, "email"),
		Name:     claimString(payload.Claims, "name"),
		Picture:  claimString(payload.Claims, "picture"),
	}
	if identity.Name == "" {
		identity.Name = claimString(payload.Claims, "given_name")
	}
	if identity.Name == "" {
		identity.Name = "Google User"
	}
	return identity, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
