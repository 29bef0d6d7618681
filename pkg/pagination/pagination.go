package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size used when the caller does not ask for one.
	DefaultLimit = 25
	// MaxLimit caps the page size regardless of what the caller asks for.
	MaxLimit = 100
)

// Params carries the raw pagination inputs taken off a request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the decoded position within a created_at,id ordered listing.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested limit into the allowed range.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer adds one row past the normalized limit so queries can tell
// whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor serializes a cursor into an opaque base64 token.
func EncodeCursor(cursor Cursor) string {
	payload := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + cursor.ID.String()
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a cursor token. An empty token means first page and
// yields a nil cursor without error.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	tsPart, idPart, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, tsPart)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}

	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}
