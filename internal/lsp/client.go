package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is one point in the Client's monotonic lifecycle.
type State int

const (
	StateCreated State = iota
	StateStarting
	StateInitializing
	StateReady
	StateShuttingDown
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarting:
		return "Starting"
	case StateInitializing:
		return "Initializing"
	case StateReady:
		return "Ready"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateClosed:
		return "Closed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Status is the read-only status tuple spec.md §6 describes.
type Status struct {
	Running        bool
	ProjectRoot    string
	OpenFilesCount int
	IndexingStatus string
}

type pendingResult struct {
	result json.RawMessage
	err    *responseError
	// cancelled is set by sweepPending when the request is abandoned on
	// shutdown or failure rather than answered by the server.
	cancelled error
}

type indexingState struct {
	inProgress bool
	percentage *int
	message    string
}

func (s indexingState) string() string {
	if !s.inProgress {
		return "idle"
	}
	if s.percentage != nil {
		return fmt.Sprintf("indexing (%d%%)", *s.percentage)
	}
	return "indexing"
}

// Client owns one clangd subprocess for the lifetime of a single
// project root. It is safe for concurrent use by multiple goroutines.
type Client struct {
	cfg       Config
	sessionID string

	mu    sync.Mutex
	state State

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	fr      *frameReader
	fw      *frameWriter
	writeMu sync.Mutex

	nextID  int64
	pending map[int64]chan pendingResult

	openDocs      map[string]int // uri -> current document version
	fileReady     map[string]struct{}
	waiters       map[string]chan struct{}
	indexing      indexingState
	indexingToken string // work-done token the indexing begin carried; "" if none tracked

	readerDone chan struct{}
	closedOnce sync.Once
}

// NewClient constructs a Client in the Created state. Call Start before
// issuing any other operation.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg.withDefaults(),
		sessionID:  uuid.NewString(),
		state:      StateCreated,
		pending:    make(map[int64]chan pendingResult),
		openDocs:   make(map[string]int),
		fileReady:  make(map[string]struct{}),
		waiters:    make(map[string]chan struct{}),
		readerDone: make(chan struct{}),
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running:        c.state == StateReady,
		ProjectRoot:    c.cfg.ProjectRoot,
		OpenFilesCount: len(c.openDocs),
		IndexingStatus: c.indexing.string(),
	}
}

// Start spawns clangd, begins the reader, and performs the
// initialize/initialized handshake. On any failure the Client
// transitions to Failed and the subprocess, if spawned, is killed.
func (c *Client) Start(ctx context.Context) error {
	if c.State() != StateCreated {
		return newErr(KindNotReady, "start", "", fmt.Errorf("client already started"))
	}
	c.setState(StateStarting)
	c.cfg.Logger.Info("lsp: starting clangd", "project_root", c.cfg.ProjectRoot, "session_id", c.sessionID)

	if _, err := exec.LookPath(c.cfg.ClangdPath); err != nil {
		recordSpawn(ctx, false)
		c.setState(StateFailed)
		return newErr(KindSpawnError, "start", "", err)
	}

	cmd := exec.Command(c.cfg.ClangdPath, c.cfg.clangdArgs()...)
	cmd.Dir = c.cfg.ProjectRoot
	stdin, err := cmd.StdinPipe()
	if err != nil {
		recordSpawn(ctx, false)
		c.setState(StateFailed)
		return newErr(KindSpawnError, "start", "", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		recordSpawn(ctx, false)
		c.setState(StateFailed)
		return newErr(KindSpawnError, "start", "", err)
	}
	if err := cmd.Start(); err != nil {
		recordSpawn(ctx, false)
		c.setState(StateFailed)
		return newErr(KindSpawnError, "start", "", err)
	}

	c.cmd = cmd
	c.stdin = stdin
	c.fr = newFrameReader(stdout)
	c.fw = newFrameWriter(stdin)

	go c.readLoop()

	c.setState(StateInitializing)
	startCtx, cancel := context.WithTimeout(ctx, c.cfg.StartupTimeout)
	defer cancel()

	if err := c.initialize(startCtx); err != nil {
		recordSpawn(ctx, false)
		c.fail(err)
		return err
	}

	recordSpawn(ctx, true)
	c.setState(StateReady)
	c.cfg.Logger.Info("lsp: clangd ready", "project_root", c.cfg.ProjectRoot)
	return nil
}

func (c *Client) initialize(ctx context.Context) error {
	params := initializeParams{
		ProcessID:    os.Getpid(),
		RootURI:      pathToURI(c.cfg.ProjectRoot),
		Capabilities: defaultCapabilities(),
	}
	raw, err := c.sendRequest(ctx, "initialize", params)
	if err != nil {
		return err
	}
	var result initializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return newErr(KindProtocolError, "initialize", "", err)
	}
	return c.sendNotification("initialized", struct{}{})
}

// Shutdown gracefully tears down the subprocess. Safe to call from any
// state other than Closed; idempotent.
func (c *Client) Shutdown(ctx context.Context) error {
	if c.State() == StateClosed {
		return nil
	}
	c.setState(StateShuttingDown)

	if c.cmd != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		_, _ = c.sendRequest(shutdownCtx, "shutdown", nil)
		cancel()
		_ = c.sendNotification("exit", nil)
	}

	if c.stdin != nil {
		_ = c.stdin.Close()
	}

	if c.cmd != nil && c.cmd.Process != nil {
		done := make(chan error, 1)
		go func() { done <- c.cmd.Wait() }()
		select {
		case <-done:
		case <-time.After(c.cfg.ShutdownGrace):
			_ = c.cmd.Process.Kill()
			<-done
		}
	}

	select {
	case <-c.readerDone:
	case <-time.After(time.Second):
	}

	c.sweepPending(errShuttingDown)
	c.setState(StateClosed)
	return nil
}

func (c *Client) fail(cause error) {
	c.sweepPending(errFailed)
	c.setState(StateFailed)
	c.cfg.Logger.Error("lsp: client failed", "err", cause)
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
}

func (c *Client) sweepPending(cause error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[int64]chan pendingResult)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- pendingResult{err: &responseError{Code: -32099, Message: cause.Error()}, cancelled: cause}
	}
}

// ---------------------------------------------------------------------
// request/notification plumbing
// ---------------------------------------------------------------------

func (c *Client) sendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	ch := make(chan pendingResult, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := json.Marshal(request{JSONRPC: jsonrpcVersion, ID: id, Method: method, Params: params})
	if err != nil {
		c.removePending(id)
		return nil, newErr(KindProtocolError, method, "", err)
	}

	c.writeMu.Lock()
	werr := c.fw.write(payload)
	c.writeMu.Unlock()
	if werr != nil {
		c.removePending(id)
		return nil, newErr(KindTransportEOF, method, "", werr)
	}

	deadline := c.cfg.RequestTimeout
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.cancelled != nil {
			return nil, newErr(KindCancelled, method, "", res.cancelled)
		}
		if res.err != nil {
			return nil, newErr(KindServerError, method, "", fmt.Errorf("%s (code %d)", res.err.Message, res.err.Code))
		}
		return res.result, nil
	case <-timer.C:
		c.removePending(id)
		return nil, newErr(KindTimeout, method, "", fmt.Errorf("deadline of %s exceeded", deadline))
	case <-ctx.Done():
		c.removePending(id)
		return nil, newErr(KindCancelled, method, "", ctx.Err())
	}
}

func (c *Client) removePending(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) sendNotification(method string, params interface{}) error {
	payload, err := json.Marshal(notification{JSONRPC: jsonrpcVersion, Method: method, Params: params})
	if err != nil {
		return newErr(KindProtocolError, method, "", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.fw.write(payload); err != nil {
		return newErr(KindTransportEOF, method, "", err)
	}
	return nil
}

// ---------------------------------------------------------------------
// reader loop
// ---------------------------------------------------------------------

func (c *Client) readLoop() {
	defer close(c.readerDone)
	for {
		raw, err := c.fr.next()
		if err != nil {
			if err == io.EOF {
				c.fail(newErr(KindTransportEOF, "", "", err))
			} else {
				c.fail(err)
			}
			return
		}
		c.handleMessage(raw)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.cfg.Logger.Warn("lsp: dropping unparseable message", "err", err)
		return
	}

	switch {
	case msg.isResponse():
		c.mu.Lock()
		ch, ok := c.pending[*msg.ID]
		if ok {
			delete(c.pending, *msg.ID)
		}
		c.mu.Unlock()
		if !ok {
			c.cfg.Logger.Warn("lsp: dropping response for unknown id", "id", *msg.ID, "err", errSpuriousReply)
			return
		}
		ch <- pendingResult{result: msg.Result, err: msg.Error}

	case msg.isNotification():
		c.handleNotification(msg.Method, msg.Params)

	default:
		c.cfg.Logger.Warn("lsp: dropping malformed message", "raw", string(raw))
	}
}

func (c *Client) handleNotification(method string, params json.RawMessage) {
	switch method {
	case "textDocument/publishDiagnostics":
		var p publishDiagnosticsParams
		if err := json.Unmarshal(params, &p); err != nil || p.URI == "" {
			return
		}
		c.markFileReady(p.URI)

	case "$/progress":
		var p progressParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		// Only WorkDoneProgressBegin carries a title; report/end only
		// carry the token from the begin they continue. So the begin
		// is matched on title, and report/end are matched on whether
		// their token is the one a matching begin stashed, not on
		// title (which they don't have).
		c.mu.Lock()
		switch p.Value.Kind {
		case "begin":
			title := strings.ToLower(p.Value.Title)
			if strings.Contains(title, "index") || strings.Contains(title, "background") {
				c.indexingToken = p.Token
				c.indexing = indexingState{inProgress: true, message: p.Value.Message}
			}
		case "report":
			if c.indexingToken != "" && p.Token == c.indexingToken {
				c.indexing.percentage = p.Value.Percentage
				c.indexing.message = p.Value.Message
			}
		case "end":
			if c.indexingToken != "" && p.Token == c.indexingToken {
				c.indexing = indexingState{inProgress: false}
				c.indexingToken = ""
			}
		}
		c.mu.Unlock()

	default:
		// window/logMessage, window/showMessage, and anything else is
		// ignored by the core; surface to the log collaborator only.
		c.cfg.Logger.Debug("lsp: ignoring notification", "method", method)
	}
}

func (c *Client) markFileReady(uri string) {
	c.mu.Lock()
	_, already := c.fileReady[uri]
	c.fileReady[uri] = struct{}{}
	waiter := c.waiters[uri]
	c.mu.Unlock()

	if !already && waiter != nil {
		select {
		case waiter <- struct{}{}:
		default:
		}
		close(waiter)
		c.mu.Lock()
		delete(c.waiters, uri)
		c.mu.Unlock()
	}
}

// WaitForFile blocks until the URI has received at least one
// publishDiagnostics notification, or timeout elapses.
func (c *Client) WaitForFile(ctx context.Context, uri string, timeout time.Duration) (bool, error) {
	c.mu.Lock()
	if _, ok := c.fileReady[uri]; ok {
		c.mu.Unlock()
		return true, nil
	}
	waiter, ok := c.waiters[uri]
	if !ok {
		waiter = make(chan struct{})
		c.waiters[uri] = waiter
	}
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-waiter:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// ---------------------------------------------------------------------
// document lifecycle
// ---------------------------------------------------------------------

func (c *Client) requireReady(method string) error {
	if c.State() == StateClosed {
		return newErr(KindNotReady, method, "", errClosed)
	}
	if c.State() != StateReady {
		return newErr(KindNotReady, method, "", errNotReady)
	}
	return nil
}

// Open sends textDocument/didOpen for uri with version 1.
func (c *Client) Open(ctx context.Context, uri, text, languageID string) error {
	if err := c.requireReady("open"); err != nil {
		return err
	}
	c.mu.Lock()
	if _, ok := c.openDocs[uri]; ok {
		c.mu.Unlock()
		return newErr(KindAlreadyOpen, "open", uri, errAlreadyOpen)
	}
	c.openDocs[uri] = 1
	c.mu.Unlock()

	err := c.sendNotification("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
	if err != nil {
		c.mu.Lock()
		delete(c.openDocs, uri)
		c.mu.Unlock()
	}
	return err
}

// Close sends textDocument/didClose for uri.
func (c *Client) Close(ctx context.Context, uri string) error {
	if err := c.requireReady("close"); err != nil {
		return err
	}
	c.mu.Lock()
	if _, ok := c.openDocs[uri]; !ok {
		c.mu.Unlock()
		return newErr(KindNotOpen, "close", uri, errNotOpen)
	}
	delete(c.openDocs, uri)
	c.mu.Unlock()

	return c.sendNotification("textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	})
}

// Reopen closes and reopens uri with fresh content, bumping the
// document version. Requires the URI to already be open.
func (c *Client) Reopen(ctx context.Context, uri, text, languageID string) error {
	if err := c.requireReady("reopen"); err != nil {
		return err
	}
	c.mu.Lock()
	version, ok := c.openDocs[uri]
	if !ok {
		c.mu.Unlock()
		return newErr(KindNotOpen, "reopen", uri, errNotOpen)
	}
	c.mu.Unlock()

	if err := c.sendNotification("textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	}); err != nil {
		return err
	}

	version++
	if err := c.sendNotification("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: version, Text: text},
	}); err != nil {
		return err
	}

	c.mu.Lock()
	c.openDocs[uri] = version
	c.mu.Unlock()
	return nil
}

func (c *Client) isOpen(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.openDocs[uri]
	return ok
}

// ---------------------------------------------------------------------
// request operations
// ---------------------------------------------------------------------

func (c *Client) requirePositionOp(method, uri string) error {
	if err := c.requireReady(method); err != nil {
		return err
	}
	if !c.isOpen(uri) {
		return newErr(KindNotOpen, method, uri, errNotOpen)
	}
	return nil
}

// Definition issues textDocument/definition.
func (c *Client) Definition(ctx context.Context, uri string, line, col int) ([]Location, error) {
	const method = "textDocument/definition"
	if err := c.requirePositionOp(method, uri); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "definition", uri, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: col},
	})
	recordOperation(ctx, "definition", start, err)
	if err != nil {
		return nil, err
	}
	return parseLocations(raw)
}

// References issues textDocument/references.
func (c *Client) References(ctx context.Context, uri string, line, col int, includeDecl bool) ([]Location, error) {
	const method = "textDocument/references"
	if err := c.requirePositionOp(method, uri); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "references", uri, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, referenceParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: col},
		Context:      referenceContext{IncludeDeclaration: includeDecl},
	})
	recordOperation(ctx, "references", start, err)
	if err != nil {
		return nil, err
	}
	return parseLocations(raw)
}

// Hover issues textDocument/hover.
func (c *Client) Hover(ctx context.Context, uri string, line, col int) (*HoverResult, error) {
	const method = "textDocument/hover"
	if err := c.requirePositionOp(method, uri); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "hover", uri, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: col},
	})
	recordOperation(ctx, "hover", start, err)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var resp hoverResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, newErr(KindProtocolError, method, uri, err)
	}
	return &HoverResult{Contents: extractHoverContent(resp.Contents), Range: resp.Range}, nil
}

// DocumentSymbol issues textDocument/documentSymbol.
func (c *Client) DocumentSymbol(ctx context.Context, uri string) ([]Symbol, error) {
	const method = "textDocument/documentSymbol"
	if err := c.requirePositionOp(method, uri); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "document_symbol", uri, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}{TextDocument: textDocumentIdentifier{URI: uri}})
	recordOperation(ctx, "document_symbol", start, err)
	if err != nil {
		return nil, err
	}
	return parseDocumentSymbols(raw, uri)
}

// WorkspaceSymbol issues workspace/symbol.
func (c *Client) WorkspaceSymbol(ctx context.Context, query string) ([]Symbol, error) {
	const method = "workspace/symbol"
	if err := c.requireReady(method); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "workspace_symbol", "", c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, workspaceSymbolParams{Query: query})
	recordOperation(ctx, "workspace_symbol", start, err)
	if err != nil {
		return nil, err
	}
	return parseWorkspaceSymbols(raw)
}

// Implementation issues textDocument/implementation.
func (c *Client) Implementation(ctx context.Context, uri string, line, col int) ([]Location, error) {
	const method = "textDocument/implementation"
	if err := c.requirePositionOp(method, uri); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "implementation", uri, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: col},
	})
	recordOperation(ctx, "implementation", start, err)
	if err != nil {
		return nil, err
	}
	return parseLocations(raw)
}

// PrepareCallHierarchy issues textDocument/prepareCallHierarchy.
func (c *Client) PrepareCallHierarchy(ctx context.Context, uri string, line, col int) ([]CallHierarchyItem, error) {
	const method = "textDocument/prepareCallHierarchy"
	if err := c.requirePositionOp(method, uri); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "prepare_call_hierarchy", uri, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, callHierarchyPrepareParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: col},
	})
	recordOperation(ctx, "prepare_call_hierarchy", start, err)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []CallHierarchyItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, newErr(KindProtocolError, method, uri, err)
	}
	return items, nil
}

// IncomingCalls issues callHierarchy/incomingCalls.
func (c *Client) IncomingCalls(ctx context.Context, item CallHierarchyItem) ([]IncomingCall, error) {
	const method = "callHierarchy/incomingCalls"
	if err := c.requireReady(method); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "incoming_calls", item.URI, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, callHierarchyIncomingCallParams{Item: item})
	recordOperation(ctx, "incoming_calls", start, err)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var calls []IncomingCall
	if err := json.Unmarshal(raw, &calls); err != nil {
		return nil, newErr(KindProtocolError, method, item.URI, err)
	}
	return calls, nil
}

// OutgoingCalls issues callHierarchy/outgoingCalls.
func (c *Client) OutgoingCalls(ctx context.Context, item CallHierarchyItem) ([]OutgoingCall, error) {
	const method = "callHierarchy/outgoingCalls"
	if err := c.requireReady(method); err != nil {
		return nil, err
	}
	ctx, span := startOperationSpan(ctx, "outgoing_calls", item.URI, c.sessionID)
	defer span.End()
	start := time.Now()

	raw, err := c.sendRequest(ctx, method, callHierarchyOutgoingCallParams{Item: item})
	recordOperation(ctx, "outgoing_calls", start, err)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var calls []OutgoingCall
	if err := json.Unmarshal(raw, &calls); err != nil {
		return nil, newErr(KindProtocolError, method, item.URI, err)
	}
	return calls, nil
}

// ---------------------------------------------------------------------
// result normalization helpers
// ---------------------------------------------------------------------

func parseLocations(raw json.RawMessage) ([]Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	// Try a list of Location first, then a list of locationLink, then
	// the single-object form of each, matching what definition/references/
	// implementation servers are known to return. Location and
	// locationLink share no field names, so an empty URI after a
	// successful Location unmarshal means the shape didn't actually
	// match and the next form should be tried instead.
	var locs []Location
	if err := json.Unmarshal(raw, &locs); err == nil && (len(locs) == 0 || locs[0].URI != "") {
		return locs, nil
	}

	var links []locationLink
	if err := json.Unmarshal(raw, &links); err == nil && len(links) > 0 {
		out := make([]Location, 0, len(links))
		for _, l := range links {
			out = append(out, Location{URI: l.TargetURI, Range: l.TargetSelectionRange})
		}
		return out, nil
	}

	var single Location
	if err := json.Unmarshal(raw, &single); err == nil && single.URI != "" {
		return []Location{single}, nil
	}

	var singleLink locationLink
	if err := json.Unmarshal(raw, &singleLink); err == nil && singleLink.TargetURI != "" {
		return []Location{{URI: singleLink.TargetURI, Range: singleLink.TargetSelectionRange}}, nil
	}

	return nil, newErr(KindProtocolError, "", "", fmt.Errorf("unrecognized location response shape"))
}

func parseDocumentSymbols(raw json.RawMessage, uri string) ([]Symbol, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var hier []documentSymbolWire
	if err := json.Unmarshal(raw, &hier); err == nil && looksHierarchical(raw) {
		return convertHierarchical(hier, uri), nil
	}
	var flat []symbolInformationWire
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, newErr(KindProtocolError, "textDocument/documentSymbol", uri, err)
	}
	return convertFlat(flat), nil
}

func parseWorkspaceSymbols(raw json.RawMessage) ([]Symbol, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var flat []symbolInformationWire
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, newErr(KindProtocolError, "workspace/symbol", "", err)
	}
	return convertFlat(flat), nil
}

// looksHierarchical is a cheap heuristic: hierarchical documentSymbol
// entries carry a selectionRange; flat symbolInformation entries carry
// a location instead. We sniff the raw bytes rather than relying on
// zero-value ambiguity after unmarshal.
func looksHierarchical(raw json.RawMessage) bool {
	return strings.Contains(string(raw), "selectionRange")
}

func convertHierarchical(items []documentSymbolWire, uri string) []Symbol {
	out := make([]Symbol, 0, len(items))
	for _, it := range items {
		out = append(out, Symbol{
			Name:     it.Name,
			Kind:     it.Kind,
			URI:      uri,
			Range:    it.SelectionRange,
			Children: convertHierarchical(it.Children, uri),
		})
	}
	return out
}

func convertFlat(items []symbolInformationWire) []Symbol {
	out := make([]Symbol, 0, len(items))
	for _, it := range items {
		out = append(out, Symbol{
			Name:  it.Name,
			Kind:  it.Kind,
			URI:   it.Location.URI,
			Range: it.Location.Range,
		})
	}
	return out
}

func extractHoverContent(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var mc markupContent
	if err := json.Unmarshal(raw, &mc); err == nil && mc.Value != "" {
		return mc.Value
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, extractHoverContent(item))
		}
		return strings.Join(parts, "\n")
	}
	return string(raw)
}

// ---------------------------------------------------------------------
// path/URI helpers
// ---------------------------------------------------------------------

func pathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

func languageIDFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c":
		return "c"
	case ".h":
		return "cpp"
	default:
		return "cpp"
	}
}
