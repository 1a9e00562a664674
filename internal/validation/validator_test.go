package validation

import (
	"testing"
	"time"
)

type sampleRequest struct {
	ClientID string `json:"clientId" validate:"required,objectid"`
	StartAt  string `json:"startAt" validate:"required,instant"`
	Email    string `json:"email" validate:"omitempty,email_shape"`
}

func TestParseInstant(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-03-01T10:00:00Z", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"2026-03-01T12:00:00+02:00", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"2026-03-01T10:00:00.123456Z", time.Date(2026, 3, 1, 10, 0, 0, 123000000, time.UTC), true},
		{"2026-03-01T10:00", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"tomorrow", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tc := range cases {
		got, err := ParseInstant(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseInstant(%q) error: %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("ParseInstant(%q) expected error", tc.in)
			}
			continue
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseInstant(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsObjectID(t *testing.T) {
	if !IsObjectID("65a1b2c3d4e5f60718293a4b") {
		t.Fatalf("expected valid object id")
	}
	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "65a1b2c3d4e5f60718293a4b00"} {
		if IsObjectID(bad) {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestStructUsesJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Struct(sampleRequest{ClientID: "nope", StartAt: "2026-03-01", Email: "not-an-email"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	details := Details(v.ValidationErrors(err))
	if details["clientId"] != "objectid" {
		t.Fatalf("expected clientId objectid failure, got %v", details)
	}
	if details["email"] != "email_shape" {
		t.Fatalf("expected email shape failure, got %v", details)
	}
	if _, ok := details["startAt"]; ok {
		t.Fatalf("startAt should be valid, got %v", details)
	}
}
