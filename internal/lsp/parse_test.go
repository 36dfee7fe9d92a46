package lsp

import (
	"encoding/json"
	"testing"
)

func TestParseLocations_Null(t *testing.T) {
	locs, err := parseLocations(json.RawMessage("null"))
	if err != nil || locs != nil {
		t.Fatalf("got %v, %v, want nil, nil", locs, err)
	}
}

func TestParseLocations_Array(t *testing.T) {
	raw := json.RawMessage(`[{"uri":"file:///a.cpp","range":{"start":{"line":1,"character":2},"end":{"line":1,"character":5}}}]`)
	locs, err := parseLocations(raw)
	if err != nil {
		t.Fatalf("parseLocations: %v", err)
	}
	if len(locs) != 1 || locs[0].URI != "file:///a.cpp" || locs[0].Range.Start.Line != 1 {
		t.Fatalf("locs = %+v", locs)
	}
}

func TestParseLocations_SingleObject(t *testing.T) {
	raw := json.RawMessage(`{"uri":"file:///a.cpp","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}}}`)
	locs, err := parseLocations(raw)
	if err != nil {
		t.Fatalf("parseLocations: %v", err)
	}
	if len(locs) != 1 || locs[0].URI != "file:///a.cpp" {
		t.Fatalf("locs = %+v", locs)
	}
}

func TestParseLocations_LocationLinkArray(t *testing.T) {
	raw := json.RawMessage(`[{"targetUri":"file:///a.cpp","targetRange":{"start":{"line":2,"character":0},"end":{"line":2,"character":1}},"targetSelectionRange":{"start":{"line":2,"character":0},"end":{"line":2,"character":1}}}]`)
	locs, err := parseLocations(raw)
	if err != nil {
		t.Fatalf("parseLocations: %v", err)
	}
	if len(locs) != 1 || locs[0].URI != "file:///a.cpp" || locs[0].Range.Start.Line != 2 {
		t.Fatalf("locs = %+v", locs)
	}
}

func TestParseDocumentSymbols_Hierarchical(t *testing.T) {
	raw := json.RawMessage(`[{"name":"main","kind":12,"range":{"start":{"line":0,"character":0},"end":{"line":3,"character":1}},"selectionRange":{"start":{"line":0,"character":4},"end":{"line":0,"character":8}},"children":[]}]`)
	symbols, err := parseDocumentSymbols(raw, "file:///a.cpp")
	if err != nil {
		t.Fatalf("parseDocumentSymbols: %v", err)
	}
	if len(symbols) != 1 || symbols[0].Name != "main" || symbols[0].Kind != 12 {
		t.Fatalf("symbols = %+v", symbols)
	}
}

func TestParseDocumentSymbols_Flat(t *testing.T) {
	raw := json.RawMessage(`[{"name":"main","kind":12,"location":{"uri":"file:///a.cpp","range":{"start":{"line":0,"character":4},"end":{"line":0,"character":8}}}}]`)
	symbols, err := parseDocumentSymbols(raw, "file:///a.cpp")
	if err != nil {
		t.Fatalf("parseDocumentSymbols: %v", err)
	}
	if len(symbols) != 1 || symbols[0].URI != "file:///a.cpp" {
		t.Fatalf("symbols = %+v", symbols)
	}
}

func TestExtractHoverContent_String(t *testing.T) {
	got := extractHoverContent(json.RawMessage(`"plain text"`))
	if got != "plain text" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractHoverContent_MarkupContent(t *testing.T) {
	got := extractHoverContent(json.RawMessage(`{"kind":"markdown","value":"**bold**"}`))
	if got != "**bold**" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractHoverContent_List(t *testing.T) {
	got := extractHoverContent(json.RawMessage(`["a","b"]`))
	if got != "a\nb" {
		t.Fatalf("got %q", got)
	}
}

func TestPathToURIRoundTrip(t *testing.T) {
	uri := pathToURI("/tmp/project/main.cpp")
	if got := uriToPath(uri); got != "/tmp/project/main.cpp" {
		t.Fatalf("uriToPath(pathToURI(...)) = %q", got)
	}
}

func TestLanguageIDFromPath(t *testing.T) {
	cases := map[string]string{
		"/a/b.c":   "c",
		"/a/b.h":   "cpp",
		"/a/b.cpp": "cpp",
		"/a/b.hpp": "cpp",
	}
	for path, want := range cases {
		if got := languageIDFromPath(path); got != want {
			t.Fatalf("languageIDFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
