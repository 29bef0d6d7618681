package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit should default, got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("negative limit should default, got %d", got)
	}
	if got := NormalizeLimit(500); got != MaxLimit {
		t.Fatalf("oversized limit should cap, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("in-range limit should pass through, got %d", got)
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("buffered limit should add one, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 590000000, time.UTC),
		ID:        uuid.New(),
	}
	encoded := EncodeCursor(cursor)

	parsed, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected cursor")
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) {
		t.Fatalf("timestamp mismatch: %s vs %s", parsed.CreatedAt, cursor.CreatedAt)
	}
	if parsed.ID != cursor.ID {
		t.Fatalf("id mismatch: %s vs %s", parsed.ID, cursor.ID)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if cursor, err := ParseCursor(""); err != nil || cursor != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", cursor, err)
	}
	if _, err := ParseCursor("not-base64!!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor("aGVsbG8="); err == nil {
		t.Fatal("expected format error")
	}
}
