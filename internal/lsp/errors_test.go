package lsp

import (
	"errors"
	"strings"
	"testing"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := newErr(KindTimeout, "textDocument/hover", "file:///a.cpp", errors.New("boom"))
	if !Is(err, KindTimeout) {
		t.Fatalf("Is(err, KindTimeout) = false")
	}
	if Is(err, KindServerError) {
		t.Fatalf("Is(err, KindServerError) = true, want false")
	}
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("underlying")
	err := newErr(KindFramingError, "", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false")
	}
}

func TestError_MessageIncludesContext(t *testing.T) {
	err := newErr(KindNotOpen, "textDocument/definition", "file:///a.cpp", errNotOpen)
	msg := err.Error()
	for _, want := range []string{"NotOpen", "textDocument/definition", "file:///a.cpp"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}
