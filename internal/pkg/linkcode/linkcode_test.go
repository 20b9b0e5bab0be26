package linkcode

import (
	"strings"
	"testing"
)

func TestGenerate_InvalidLength(t *testing.T) {
	t.Parallel()

	if _, err := Generate(0); err == nil {
		t.Fatalf("expected error for invalid length")
	}
}

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	t.Parallel()

	code, err := Generate(DefaultLength)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(code) != DefaultLength {
		t.Fatalf("expected code length %d, got %d", DefaultLength, len(code))
	}

	for i := 0; i < len(code); i++ {
		if strings.IndexByte(alphabet, code[i]) == -1 {
			t.Fatalf("code contains invalid character %q", code[i])
		}
	}
}

func TestGenerate_UniqueWithinLargeSample(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for i := 0; i < 10000; i++ {
		code, err := Generate(DefaultLength)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, exists := seen[code]; exists {
			t.Fatalf("duplicate code generated within sample: %s", code)
		}
		seen[code] = struct{}{}
	}
}
