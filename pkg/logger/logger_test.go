package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithPartyID(ctx, "party-9")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("\"request_id\"")) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\"party_id\"")) {
		t.Fatalf("expected party_id to be preserved; entry=%s", buf.String())
	}
}

func TestLoggerFieldsDoNotLeakAcrossContexts(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})

	scoped := log.WithUserID(context.Background(), "user-1")
	_ = scoped

	log.Info(context.Background(), "plain entry")
	if bytes.Contains(buf.Bytes(), []byte("user-1")) {
		t.Fatalf("scoped field leaked into unscoped context; entry=%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fall back to info, got %v", lvl)
	}
	if lvl := ParseLevel("WARN"); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", lvl)
	}
}
