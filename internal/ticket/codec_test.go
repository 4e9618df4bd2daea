package ticket

import (
	"errors"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range []int64{1, 42, 999999, 9223372036854775807} {
		payload := Encode(id)
		got, err := Decode(payload)
		if err != nil {
			t.Fatalf("Decode(Encode(%d)): %v", id, err)
		}
		if got != id {
			t.Fatalf("round trip: expected %d, got %d", id, got)
		}
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{"", "abc", "12abc", "-1", "0", "1.5", "0x1f", "999999999999999999999"} {
		_, err := Decode(payload)
		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("Decode(%q): expected ErrMalformedPayload, got %v", payload, err)
		}
	}
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	t.Parallel()

	id, err := Decode("  42\n")
	if err != nil {
		t.Fatalf("expected whitespace-padded payload to decode, got %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}
