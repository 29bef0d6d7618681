package registry

import (
	"encoding/json"
	"testing"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventQuoteRequestExpired, 1, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"reason":"deadline passed"}`)
	output, err := reg.Decode(enums.EventQuoteRequestExpired, 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["reason"] != "deadline passed" {
		t.Fatalf("unexpected output %+v", output)
	}

	if _, err := reg.Decode(enums.EventQuoteRequestExpired, 2, input); err == nil {
		t.Fatalf("expected missing decoder error")
	}
}
