package lsp

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestFrameWriterWrite(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	payload := []byte(`{"jsonrpc":"2.0","id":1,"method":"foo"}`)

	if err := fw.write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := buf.String()
	wantHeader := "Content-Length: 39\r\n\r\n"
	if !strings.HasPrefix(got, wantHeader) {
		t.Fatalf("header = %q, want prefix %q", got, wantHeader)
	}
	if !strings.HasSuffix(got, string(payload)) {
		t.Fatalf("body not appended correctly: %q", got)
	}
}

func TestFrameReaderRoundTrip(t *testing.T) {
	payload := []byte(`{"jsonrpc":"2.0","id":1,"result":[]}`)
	var buf bytes.Buffer
	if err := newFrameWriter(&buf).write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	fr := newFrameReader(&buf)
	got, err := fr.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("next() = %q, want %q", got, payload)
	}
}

func TestFrameReaderMultipleHeaders(t *testing.T) {
	raw := "Content-Type: application/vscode-jsonrpc\r\ncontent-length: 2\r\n\r\n{}"
	fr := newFrameReader(strings.NewReader(raw))
	got, err := fr.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if string(got) != "{}" {
		t.Fatalf("next() = %q, want %q", got, "{}")
	}
}

func TestFrameReaderMissingContentLength(t *testing.T) {
	fr := newFrameReader(strings.NewReader("Content-Type: application/json\r\n\r\n{}"))
	_, err := fr.next()
	if !Is(err, KindFramingError) {
		t.Fatalf("err = %v, want KindFramingError", err)
	}
}

func TestFrameReaderZeroLengthPayload(t *testing.T) {
	fr := newFrameReader(strings.NewReader("Content-Length: 0\r\n\r\n"))
	_, err := fr.next()
	if !Is(err, KindFramingError) {
		t.Fatalf("err = %v, want KindFramingError", err)
	}
}

func TestFrameReaderShortReadMidFrame(t *testing.T) {
	fr := newFrameReader(strings.NewReader("Content-Length: 10\r\n\r\n{\"a\":1}"))
	_, err := fr.next()
	if !Is(err, KindFramingError) {
		t.Fatalf("err = %v, want KindFramingError", err)
	}
}

func TestFrameReaderCleanEOFBetweenFrames(t *testing.T) {
	fr := newFrameReader(strings.NewReader(""))
	_, err := fr.next()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestFrameReaderMultipleFrames(t *testing.T) {
	// Two well-formed frames back to back, to exercise sequential reads
	// from one stream.
	raw := "Content-Length: 2\r\n\r\n{}Content-Length: 7\r\n\r\n{\"a\":1}"
	fr := newFrameReader(strings.NewReader(raw))

	first, err := fr.next()
	if err != nil {
		t.Fatalf("first next: %v", err)
	}
	if string(first) != "{}" {
		t.Fatalf("first = %q", first)
	}

	second, err := fr.next()
	if err != nil {
		t.Fatalf("second next: %v", err)
	}
	if string(second) != `{"a":1}` {
		t.Fatalf("second = %q", second)
	}

	if _, err := fr.next(); !errors.Is(err, io.EOF) {
		t.Fatalf("third next err = %v, want io.EOF", err)
	}
}
