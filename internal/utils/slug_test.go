package utils_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/inkwell/bloghub/internal/utils"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Hello World", want: "hello-world"},
		{name: "punctuation", in: "Go 1.24: what's new?", want: "go-1-24-what-s-new"},
		{name: "leading_trailing_junk", in: "  --Hi there!-- ", want: "hi-there"},
		{name: "collapses_runs", in: "a    b", want: "a-b"},
		{name: "empty_falls_back", in: "???", want: "untitled"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := utils.Slugify(tt.in); got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	long := strings.Repeat("word-", 100)

	if got := utils.Slugify(long); len(got) > 120 {
		t.Fatalf("slug too long: %d chars", len(got))
	}
}

func TestSlugifyCapKeepsValidUTF8(t *testing.T) {
	// a 120-byte cut would land mid-rune in this title
	long := "a" + strings.Repeat("я", 100)

	got := utils.Slugify(long)

	if !utf8.ValidString(got) {
		t.Fatalf("slug is not valid UTF-8: %q", got)
	}

	if len(got) > 120 {
		t.Fatalf("slug too long: %d bytes", len(got))
	}

	if got == "" {
		t.Fatal("slug collapsed to empty")
	}
}

func TestSlugWithSuffix(t *testing.T) {
	a := utils.SlugWithSuffix("hello-world")
	b := utils.SlugWithSuffix("hello-world")

	if !strings.HasPrefix(a, "hello-world-") {
		t.Fatalf("suffix slug must keep the base: %q", a)
	}

	if a == b {
		t.Fatalf("two suffixed slugs should differ: %q", a)
	}
}
