package lsp

import (
	"errors"
	"fmt"
)

// Kind identifies the semantic category of an error the runtime can
// produce, independent of the Go type that carries it. Callers match on
// Kind rather than on concrete error values.
type Kind int

const (
	// KindUnknown is the zero value; never returned by this package.
	KindUnknown Kind = iota
	// KindFramingError means malformed bytes arrived from the server.
	KindFramingError
	// KindTransportEOF means the server closed its stdout.
	KindTransportEOF
	// KindProtocolError means a response lacked a pending id or a
	// message was missing required fields.
	KindProtocolError
	// KindServerError wraps an LSP error object from a response.
	KindServerError
	// KindTimeout means a request's deadline elapsed before a response.
	KindTimeout
	// KindCancelled means an operation was aborted by shutdown.
	KindCancelled
	// KindNotReady means the Client is not in the Ready state.
	KindNotReady
	// KindNotOpen means an operation referenced a URI that is not open.
	KindNotOpen
	// KindAlreadyOpen means open() was called on an already-open URI.
	KindAlreadyOpen
	// KindProjectMismatch means the Manager is bound to a different root.
	KindProjectMismatch
	// KindSpawnError means the subprocess could not be started.
	KindSpawnError
	// KindFatal means an unrecoverable error drove the Client to Failed.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindFramingError:
		return "FramingError"
	case KindTransportEOF:
		return "TransportEOF"
	case KindProtocolError:
		return "ProtocolError"
	case KindServerError:
		return "ServerError"
	case KindTimeout:
		return "Timeout"
	case KindCancelled:
		return "Cancelled"
	case KindNotReady:
		return "NotReady"
	case KindNotOpen:
		return "NotOpen"
	case KindAlreadyOpen:
		return "AlreadyOpen"
	case KindProjectMismatch:
		return "ProjectMismatch"
	case KindSpawnError:
		return "SpawnError"
	case KindFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by this package. It carries
// enough context to diagnose a caller-visible failure: the error kind,
// the method and URI involved (when applicable), and the underlying
// cause, if any.
type Error struct {
	Kind   Kind
	Method string
	URI    string
	Cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Method != "" && e.URI != "":
		return fmt.Sprintf("lsp: %s: method=%s uri=%s: %v", e.Kind, e.Method, e.URI, e.Cause)
	case e.Method != "":
		return fmt.Sprintf("lsp: %s: method=%s: %v", e.Kind, e.Method, e.Cause)
	case e.URI != "":
		return fmt.Sprintf("lsp: %s: uri=%s: %v", e.Kind, e.URI, e.Cause)
	default:
		return fmt.Sprintf("lsp: %s: %v", e.Kind, e.Cause)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind == k
	}
	return false
}

func newErr(kind Kind, method, uri string, cause error) *Error {
	return &Error{Kind: kind, Method: method, URI: uri, Cause: cause}
}

// Sentinel causes used where no further context is useful; wrapped by
// newErr at the call site so callers still see a structured *Error.
var (
	errNotReady      = errors.New("client is not ready")
	errNotOpen       = errors.New("document is not open")
	errAlreadyOpen   = errors.New("document is already open")
	errShuttingDown  = errors.New("client is shutting down")
	errClosed        = errors.New("client is closed")
	errFailed        = errors.New("client has failed")
	errSpuriousReply = errors.New("response for unknown request id")
)
