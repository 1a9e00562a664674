package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/idtoken"
)

func TestManagerIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour, "booking-api")
	token, err := m.Issue("65a1b2c3d4e5f60718293a4b", "client")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "65a1b2c3d4e5f60718293a4b" || claims.Role != "client" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("expected expiration to be set")
	}
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager("secret", time.Minute, "booking-api")
	m.now = func() time.Time { return issued }

	token, err := m.Issue("65a1b2c3d4e5f60718293a4b", "admin")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := m.Parse(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestManagerRejectsForeignSignature(t *testing.T) {
	a := NewManager("secret-a", time.Hour, "booking-api")
	b := NewManager("secret-b", time.Hour, "booking-api")

	token, err := a.Issue("65a1b2c3d4e5f60718293a4b", "client")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := b.Parse(token); err == nil {
		t.Fatalf("expected signature mismatch to be rejected")
	}
	if _, err := a.Parse("not.a.token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatalf("hash must not equal the password")
	}
	if err := ComparePassword(hash, "s3cret!"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
	if err := ComparePassword("", "s3cret!"); err == nil {
		t.Fatalf("expected missing hash to fail")
	}
}

func TestGoogleVerifierMapsPayload(t *testing.T) {
	v := &GoogleVerifier{
		audience: "client-id",
		validate: func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			if audience != "client-id" {
				t.Fatalf("unexpected audience %q", audience)
			}
			return &idtoken.Payload{
				Subject: "1234567890",
				Claims: map[string]interface{}{
					"email":      "ada@example.com",
					"given_name": "Ada",
					"picture":    "https://example.com/ada.png",
				},
			}, nil
		},
	}

	identity, err := v.Verify(context.Background(), "token")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if identity.Subject != "1234567890" || identity.Email != "ada@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.Name != "Ada" {
		t.Fatalf("expected given_name fallback, got %q", identity.Name)
	}
	if identity.Picture != "https://example.com/ada.png" {
		t.Fatalf("unexpected picture %q", identity.Picture)
	}
}

func TestGoogleVerifierRejectsInvalidToken(t *testing.T) {
	v := &GoogleVerifier{
		audience: "client-id",
		validate: func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			return nil, errors.New("bad signature")
		},
	}
	if _, err := v.Verify(context.Background(), "token"); !errors.Is(err, ErrExternalTokenInvalid) {
		t.Fatalf("expected ErrExternalTokenInvalid, got %v", err)
	}

	var unconfigured *GoogleVerifier
	if _, err := unconfigured.Verify(context.Background(), "token"); err == nil {
		t.Fatalf("expected unconfigured verifier to fail")
	}
}
