// Package nettrxerr defines the distinct error kinds from the NetTrx
// propagation policy: protocol/transport failures are local to one
// session, configuration failures are fatal at startup, and DSP parameter
// failures are fatal only for the affected DDR.
package nettrxerr

import "errors"

// Kind identifies which of the nine semantic error categories an error
// belongs to, so callers can decide propagation policy with errors.Is
// instead of string matching.
type Kind int

const (
	KindProtocolFormat Kind = iota
	KindAuthFailed
	KindPeerTimeout
	KindBufferOverflowSend
	KindBufferOverflowRecv
	KindTransportIO
	KindConfigInvalid
	KindResourceExhausted
	KindDSPParamInvalid
)

func (k Kind) String() string {
	switch k {
	case KindProtocolFormat:
		return "protocol-format"
	case KindAuthFailed:
		return "authentication-failed"
	case KindPeerTimeout:
		return "peer-timeout"
	case KindBufferOverflowSend:
		return "buffer-overflow-send"
	case KindBufferOverflowRecv:
		return "buffer-overflow-recv"
	case KindTransportIO:
		return "transport-io"
	case KindConfigInvalid:
		return "configuration-invalid"
	case KindResourceExhausted:
		return "resource-exhausted"
	case KindDSPParamInvalid:
		return "dsp-parameter-invalid"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with its semantic Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for the given kind, op, and wrapped cause.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether the first *Error in err's chain has the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Sessions-local errors close only the offending connection.
func IsSessionLocal(err error) bool {
	return Is(err, KindProtocolFormat) ||
		Is(err, KindAuthFailed) ||
		Is(err, KindPeerTimeout) ||
		Is(err, KindBufferOverflowSend) ||
		Is(err, KindBufferOverflowRecv) ||
		Is(err, KindTransportIO)
}

// IsFatalAtStart reports whether err should abort process startup.
func IsFatalAtStart(err error) bool {
	return Is(err, KindConfigInvalid)
}

// IsDDRLocal reports whether err should only disable the affected DDR.
func IsDDRLocal(err error) bool {
	return Is(err, KindDSPParamInvalid) || Is(err, KindResourceExhausted)
}
