package lsp

import "encoding/json"

// jsonrpcVersion is the only JSON-RPC version this client speaks.
const jsonrpcVersion = "2.0"

// request is an outbound JSON-RPC request frame.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// notification is an outbound JSON-RPC notification frame (no id).
type notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// responseError mirrors the LSP/JSON-RPC error object.
type responseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// inboundMessage is the shape used to sniff an arriving frame before
// deciding whether it is a response or a server-initiated notification.
type inboundMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *responseError  `json:"error,omitempty"`
}

func (m *inboundMessage) isResponse() bool {
	return m.ID != nil && m.Method == ""
}

func (m *inboundMessage) isNotification() bool {
	return m.ID == nil && m.Method != ""
}

// Position is 0-indexed line/character, matching the wire protocol.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location pairs a URI with a Range in that document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// locationLink is the richer form some servers return from
// definition/implementation requests; normalized into Location.
type locationLink struct {
	TargetURI            string `json:"targetUri"`
	TargetRange          Range  `json:"targetRange"`
	TargetSelectionRange Range  `json:"targetSelectionRange"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type textDocumentPositionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type didOpenTextDocumentParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didCloseTextDocumentParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type referenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type referenceParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	Context      referenceContext       `json:"context"`
}

type workspaceSymbolParams struct {
	Query string `json:"query"`
}

// HoverResult is the normalized result of a hover request.
type HoverResult struct {
	Contents string `json:"contents"`
	Range    *Range `json:"range,omitempty"`
}

type markupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type hoverResponse struct {
	Contents json.RawMessage `json:"contents"`
	Range    *Range          `json:"range,omitempty"`
}

// SymbolKind mirrors the LSP SymbolKind enumeration (1-26).
type SymbolKind int

// Symbol is a normalized document/workspace symbol.
type Symbol struct {
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	URI      string     `json:"uri,omitempty"`
	Range    Range      `json:"range"`
	Children []Symbol   `json:"children,omitempty"`
}

// wire shapes returned by documentSymbol (hierarchical) and
// workspace/symbol (flat, location-bearing).
type documentSymbolWire struct {
	Name           string               `json:"name"`
	Kind           SymbolKind           `json:"kind"`
	Range          Range                `json:"range"`
	SelectionRange Range                `json:"selectionRange"`
	Children       []documentSymbolWire `json:"children,omitempty"`
}

type symbolInformationWire struct {
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	Location Location   `json:"location"`
}

// CallHierarchyItem identifies a function/method for call-hierarchy
// queries; opaque beyond what the server needs to resume the walk.
type CallHierarchyItem struct {
	Name           string          `json:"name"`
	Kind           SymbolKind      `json:"kind"`
	URI            string          `json:"uri"`
	Range          Range           `json:"range"`
	SelectionRange Range           `json:"selectionRange"`
	Data           json.RawMessage `json:"data,omitempty"`
}

type callHierarchyPrepareParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type callHierarchyIncomingCallParams struct {
	Item CallHierarchyItem `json:"item"`
}

type callHierarchyOutgoingCallParams struct {
	Item CallHierarchyItem `json:"item"`
}

// IncomingCall is a normalized callHierarchy/incomingCalls entry.
type IncomingCall struct {
	From       CallHierarchyItem `json:"from"`
	FromRanges []Range           `json:"fromRanges"`
}

// OutgoingCall is a normalized callHierarchy/outgoingCalls entry.
type OutgoingCall struct {
	To         CallHierarchyItem `json:"to"`
	FromRanges []Range           `json:"fromRanges"`
}

// publishDiagnosticsParams is the notification payload this client
// treats as a per-URI readiness edge; diagnostic contents themselves
// are not interpreted.
type publishDiagnosticsParams struct {
	URI string `json:"uri"`
}

// progressParams is the $/progress notification payload; only the
// fields used to drive the indexing-status tuple are decoded.
type progressParams struct {
	Token string `json:"token"`
	Value struct {
		Kind       string `json:"kind"`
		Title      string `json:"title"`
		Message    string `json:"message"`
		Percentage *int   `json:"percentage"`
	} `json:"value"`
}

// initializeParams is sent once at startup.
type initializeParams struct {
	ProcessID             int                `json:"processId"`
	RootURI               string             `json:"rootUri"`
	Capabilities          clientCapabilities `json:"capabilities"`
	InitializationOptions interface{}        `json:"initializationOptions,omitempty"`
}

type clientCapabilities struct {
	TextDocument textDocumentClientCapabilities `json:"textDocument"`
	Workspace    workspaceClientCapabilities    `json:"workspace"`
	Window       windowClientCapabilities       `json:"window"`
}

type textDocumentClientCapabilities struct {
	Hover          hoverClientCapabilities          `json:"hover"`
	Definition     linkSupportCapability            `json:"definition"`
	Implementation linkSupportCapability            `json:"implementation"`
	References     struct{}                         `json:"references"`
	DocumentSymbol documentSymbolClientCapabilities `json:"documentSymbol"`
	CallHierarchy  struct{}                         `json:"callHierarchy"`
}

type hoverClientCapabilities struct {
	ContentFormat []string `json:"contentFormat"`
}

type linkSupportCapability struct {
	LinkSupport bool `json:"linkSupport"`
}

type documentSymbolClientCapabilities struct {
	HierarchicalDocumentSymbolSupport bool `json:"hierarchicalDocumentSymbolSupport"`
}

type workspaceClientCapabilities struct {
	Symbol workspaceSymbolClientCapabilities `json:"symbol"`
}

type workspaceSymbolClientCapabilities struct {
	SymbolKind struct {
		ValueSet []SymbolKind `json:"valueSet"`
	} `json:"symbolKind"`
}

type windowClientCapabilities struct {
	WorkDoneProgress bool `json:"workDoneProgress"`
}

func defaultCapabilities() clientCapabilities {
	valueSet := make([]SymbolKind, 26)
	for i := range valueSet {
		valueSet[i] = SymbolKind(i + 1)
	}
	caps := clientCapabilities{}
	caps.TextDocument.Hover.ContentFormat = []string{"markdown", "plaintext"}
	caps.TextDocument.Definition.LinkSupport = true
	caps.TextDocument.Implementation.LinkSupport = true
	caps.TextDocument.DocumentSymbol.HierarchicalDocumentSymbolSupport = true
	caps.Workspace.Symbol.SymbolKind.ValueSet = valueSet
	caps.Window.WorkDoneProgress = true
	return caps
}

type initializeResult struct {
	Capabilities json.RawMessage `json:"capabilities"`
}
