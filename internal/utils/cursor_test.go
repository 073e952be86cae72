package utils_test

import (
	"testing"
	"time"

	"github.com/inkwell/bloghub/internal/utils"
)

func TestPostCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	enc, err := utils.EncodePostCursor(createdAt, "post-1")

	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	c, err := utils.DecodePostCursor(enc)

	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !c.CreatedAt.Equal(createdAt) || c.ID != "post-1" {
		t.Fatalf("round trip mismatch: %+v", c)
	}
}

func TestDecodePostCursorRejectsGarbage(t *testing.T) {
	for _, cursor := range []string{"", "not-base64!!", "aGVsbG8"} {
		if _, err := utils.DecodePostCursor(cursor); err == nil {
			t.Fatalf("cursor %q should not decode", cursor)
		}
	}
}
