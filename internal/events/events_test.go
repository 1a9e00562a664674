package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestEncodeEnvelope(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	body, err := encode(AppointmentCreated, map[string]string{"id": "abc"}, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got struct {
		Type       string            `json:"type"`
		OccurredAt string            `json:"occurredAt"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != "appointment.created" {
		t.Fatalf("expected type appointment.created, got %q", got.Type)
	}
	if got.OccurredAt != "2025-03-01T09:00:00Z" {
		t.Fatalf("expected UTC timestamp, got %q", got.OccurredAt)
	}
	if got.Data["id"] != "abc" {
		t.Fatalf("expected data to be carried, got %v", got.Data)
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NewNoop()
	if err := p.Publish(context.Background(), AppointmentDeleted, nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
