package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit},
		{in: -5, want: DefaultLimit},
		{in: 10, want: 10},
		{in: MaxLimit + 50, want: MaxLimit},
	}
	for _, tt := range tests {
		if got := NormalizeLimit(tt.in); got != tt.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2025, 8, 12, 10, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := ParseCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if decoded == nil {
		t.Fatal("expected decoded cursor")
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.CreatedAt, original.CreatedAt)
	}
	if decoded.ID != original.ID {
		t.Fatalf("id mismatch: %s vs %s", decoded.ID, original.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("  ")
	if err != nil {
		t.Fatalf("expected nil error for blank cursor, got %v", err)
	}
	if cursor != nil {
		t.Fatal("expected nil cursor for blank input")
	}
}

func TestParseCursorMalformed(t *testing.T) {
	for _, value := range []string{"not-base64!", "bm8tcGlwZQ", "fHw"} {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for cursor %q", value)
		}
	}
}
